package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

// classifyError wraps a vendor failure. Timeouts and overload responses become
// ErrServiceUnavailable on top of ErrUpstream.
func classifyError(vendor string, status int, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w: %s request timed out: %v", contractx.ErrServiceUnavailable, contractx.ErrUpstream, vendor, err)
	case status == http.StatusTooManyRequests,
		status == http.StatusServiceUnavailable,
		status == 529:
		return fmt.Errorf("%w: %w: %s returned status %d", contractx.ErrServiceUnavailable, contractx.ErrUpstream, vendor, status)
	default:
		return fmt.Errorf("%w: %s: %v", contractx.ErrUpstream, vendor, err)
	}
}

// newInvocation normalizes a vendor tool call. Arguments stay nil when the raw
// text is not a JSON object so the executor can reject it.
func newInvocation(id, name, rawArgs string) (contractx.ToolInvocationRequest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return contractx.ToolInvocationRequest{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
	}
	if strings.TrimSpace(id) == "" {
		id = "call_" + uuid.NewString()
	}

	req := contractx.ToolInvocationRequest{
		ID:           id,
		ToolName:     name,
		RawArguments: rawArgs,
	}
	trimmed := strings.TrimSpace(rawArgs)
	if trimmed == "" {
		req.Arguments = map[string]any{}
		return req, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err == nil && args != nil {
		req.Arguments = args
	}
	return req, nil
}

// rawArguments returns the JSON text of the invocation arguments.
func rawArguments(inv contractx.ToolInvocationRequest) string {
	if strings.TrimSpace(inv.RawArguments) != "" {
		return inv.RawArguments
	}
	if inv.Arguments == nil {
		return "{}"
	}
	raw, err := json.Marshal(inv.Arguments)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
