package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
	"github.com/xeipuuv/gojsonschema"
)

// decodeArgs validates the invocation arguments against the descriptor schema
// and decodes them into out. Null values are treated as absent.
func decodeArgs(req contractx.ToolInvocationRequest, desc contractx.ToolDescriptor, out any) error {
	args, err := argumentsOf(req)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(desc.JSONSchema()),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("%w: arguments for %s: %v", contractx.ErrValidation, desc.Name, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: arguments for %s: %s", contractx.ErrValidation, desc.Name, strings.Join(msgs, "; "))
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "json",
	})
	if err != nil {
		return fmt.Errorf("build argument decoder: %w", err)
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("%w: arguments for %s: %v", contractx.ErrValidation, desc.Name, err)
	}
	return nil
}

func argumentsOf(req contractx.ToolInvocationRequest) (map[string]any, error) {
	args := req.Arguments
	if args == nil {
		raw := strings.TrimSpace(req.RawArguments)
		if raw == "" {
			return map[string]any{}, nil
		}
		if err := json.Unmarshal([]byte(raw), &args); err != nil || args == nil {
			return nil, fmt.Errorf("%w: arguments for %s are not a JSON object", contractx.ErrValidation, req.ToolName)
		}
	}

	out := make(map[string]any, len(args))
	for k, v := range args {
		if v != nil {
			out[k] = v
		}
	}
	return out, nil
}
