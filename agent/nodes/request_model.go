package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

// RequestModel sends the prompt with the tool catalog.
func RequestModel(
	ctx context.Context,
	in *TurnState,
	client contractx.ModelClient,
	tools []contractx.ToolDescriptor,
	timeout time.Duration,
) (*TurnState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	resp, err := converse(ctx, client, contractx.ConverseRequest{
		SystemInstruction: in.SystemInstruction,
		Messages:          in.Messages,
		Tools:             tools,
	}, timeout)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("tool_invocations", len(resp.ToolInvocations)).
		Bool("has_text", resp.Text != "").
		Msg("model responded")
	in.First = resp
	return in, nil
}

// NextAfterModel picks the branch that follows the first model response.
func NextAfterModel(in *TurnState) string {
	if in != nil && in.First.HasToolInvocations() {
		return NodeExecuteTools
	}
	return NodeAnswerDirectly
}

const (
	NodeValidateRequest = "validate_request"
	NodeRequestModel    = "request_model"
	NodeAnswerDirectly  = "answer_directly"
	NodeExecuteTools    = "execute_tools"
	NodeRequestFollowUp = "request_follow_up"
)

func converse(ctx context.Context, client contractx.ModelClient, req contractx.ConverseRequest, timeout time.Duration) (contractx.ConverseResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	resp, err := client.Converse(ctx, req)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, contractx.ErrServiceUnavailable) {
		return contractx.ConverseResponse{}, fmt.Errorf("%w: %w: model call timed out: %v",
			contractx.ErrServiceUnavailable, contractx.ErrUpstream, err)
	}
	return resp, err
}
