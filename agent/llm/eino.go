package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

var _ contractx.ModelClient = (*EinoClient)(nil)

// EinoClient adapts an eino tool-calling chat model.
type EinoClient struct {
	chatModel einomodel.ToolCallingChatModel
	vendor    string
}

func NewEinoClient(chatModel einomodel.ToolCallingChatModel, vendor string) (*EinoClient, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if vendor == "" {
		vendor = "eino"
	}
	return &EinoClient{chatModel: chatModel, vendor: vendor}, nil
}

func (c *EinoClient) Converse(ctx context.Context, req contractx.ConverseRequest) (contractx.ConverseResponse, error) {
	chatModel := c.chatModel
	if len(req.Tools) > 0 {
		bound, err := c.chatModel.WithTools(toToolInfos(req.Tools))
		if err != nil {
			return contractx.ConverseResponse{}, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
		}
		chatModel = bound
	}

	msg, err := chatModel.Generate(ctx, toEinoMessages(req))
	if err != nil {
		return contractx.ConverseResponse{}, classifyError(c.vendor, 0, err)
	}
	if msg == nil {
		return contractx.ConverseResponse{}, fmt.Errorf("%w: empty %s response", contractx.ErrSchemaViolation, c.vendor)
	}

	out := contractx.ConverseResponse{Text: strings.TrimSpace(msg.Content)}
	if len(req.Tools) == 0 {
		return out, nil
	}
	for _, call := range msg.ToolCalls {
		inv, err := newInvocation(call.ID, call.Function.Name, call.Function.Arguments)
		if err != nil {
			return contractx.ConverseResponse{}, err
		}
		out.ToolInvocations = append(out.ToolInvocations, inv)
	}
	return out, nil
}

func toEinoMessages(req contractx.ConverseRequest) []*schema.Message {
	out := make([]*schema.Message, 0, len(req.Messages)+1)
	if req.SystemInstruction != "" {
		out = append(out, schema.SystemMessage(req.SystemInstruction))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case contractx.RoleUser:
			out = append(out, schema.UserMessage(m.Content))
		case contractx.RoleTool:
			out = append(out, schema.ToolMessage(m.Content, m.ToolCallID))
		case contractx.RoleAssistant:
			msg := &schema.Message{Role: schema.Assistant, Content: m.Content}
			for _, inv := range m.ToolInvocations {
				msg.ToolCalls = append(msg.ToolCalls, schema.ToolCall{
					ID:   inv.ID,
					Type: "function",
					Function: schema.FunctionCall{
						Name:      inv.ToolName,
						Arguments: rawArguments(inv),
					},
				})
			}
			out = append(out, msg)
		}
	}
	return out
}

func toToolInfos(tools []contractx.ToolDescriptor) []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		params := make(map[string]*schema.ParameterInfo, len(t.Params))
		for _, p := range t.Params {
			params[p.Name] = &schema.ParameterInfo{
				Type:     dataType(p.Type),
				Desc:     p.Description,
				Required: p.Required,
			}
		}
		out = append(out, &schema.ToolInfo{
			Name:        t.Name,
			Desc:        t.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return out
}

func dataType(t string) schema.DataType {
	switch t {
	case "integer":
		return schema.Integer
	case "number":
		return schema.Number
	case "boolean":
		return schema.Boolean
	case "object":
		return schema.Object
	case "array":
		return schema.Array
	default:
		return schema.String
	}
}
