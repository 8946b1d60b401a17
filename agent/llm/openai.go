package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
	openrouterx "github.com/tanpawarit/contact-assistant/pkg/openrouter"
)

var _ contractx.ModelClient = (*OpenAIClient)(nil)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client      *openaisdk.Client
	model       string
	maxTokens   int64
	temperature float64
}

func NewOpenAIClient(cfg Config, opts ...option.RequestOption) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: openai api key is required", contractx.ErrConfiguration)
	}
	client := openrouterx.NewClient(cfg.OpenRouter(), opts...)
	return &OpenAIClient{
		client:      client,
		model:       cfg.ModelName(),
		maxTokens:   int64(cfg.MaxCompletionToken),
		temperature: float64(cfg.Temperature),
	}, nil
}

func (c *OpenAIClient) Converse(ctx context.Context, req contractx.ConverseRequest) (contractx.ConverseResponse, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(c.model),
		Messages:    toOpenAIMessages(req),
		Temperature: openaisdk.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(c.maxTokens)
	}
	if len(req.Tools) > 0 {
		params.Tools = toOpenAITools(req.Tools)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *openaisdk.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return contractx.ConverseResponse{}, classifyError("openai", status, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return contractx.ConverseResponse{}, fmt.Errorf("%w: openai returned no choices", contractx.ErrSchemaViolation)
	}

	msg := resp.Choices[0].Message
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

func toOpenAIMessages(req contractx.ConverseRequest) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemInstruction != "" {
		out = append(out, openaisdk.SystemMessage(req.SystemInstruction))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case contractx.RoleUser:
			out = append(out, openaisdk.UserMessage(m.Content))
		case contractx.RoleTool:
			out = append(out, openaisdk.ToolMessage(m.Content, m.ToolCallID))
		case contractx.RoleAssistant:
			if len(m.ToolInvocations) == 0 {
				out = append(out, openaisdk.AssistantMessage(m.Content))
				continue
			}
			assistant := openaisdk.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openaisdk.String(m.Content)
			}
			for _, inv := range m.ToolInvocations {
				assistant.ToolCalls = append(assistant.ToolCalls, openaisdk.ChatCompletionMessageToolCallParam{
					ID: inv.ID,
					Function: openaisdk.ChatCompletionMessageToolCallFunctionParam{
						Name:      inv.ToolName,
						Arguments: rawArguments(inv),
					},
				})
			}
			out = append(out, openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return out
}

func toOpenAITools(tools []contractx.ToolDescriptor) []openaisdk.ChatCompletionToolParam {
	out := make([]openaisdk.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openaisdk.ChatCompletionToolParam{
			Function: openaisdk.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openaisdk.String(t.Description),
				Parameters:  openaisdk.FunctionParameters(t.JSONSchema()),
			},
		})
	}
	return out
}
