package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

var _ contractx.ModelClient = (*AnthropicClient)(nil)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

func NewAnthropicClient(cfg Config, extra ...option.RequestOption) (*AnthropicClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: anthropic api key is required", contractx.ErrConfiguration)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	opts = append(opts, extra...)

	return &AnthropicClient{
		client:      anthropic.NewClient(opts...),
		model:       cfg.ModelName(),
		maxTokens:   int64(cfg.MaxCompletionToken),
		temperature: float64(cfg.Temperature),
	}, nil
}

func (c *AnthropicClient) Converse(ctx context.Context, req contractx.ConverseRequest) (contractx.ConverseResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Messages:    toAnthropicMessages(req.Messages),
		Temperature: anthropic.Float(c.temperature),
	}
	if req.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemInstruction}}
	}

	switch {
	case len(req.Tools) > 0:
		params.Tools = toAnthropicTools(req.Tools)
	case hasToolHistory(req.Messages):
		// Tool blocks in the history require tool definitions, so the
		// catalog is rebuilt from the history and calls are disabled.
		params.Tools = historyTools(req.Messages)
		none := anthropic.NewToolChoiceNoneParam()
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &none}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return contractx.ConverseResponse{}, classifyError("anthropic", status, err)
	}
	if resp == nil {
		return contractx.ConverseResponse{}, fmt.Errorf("%w: anthropic returned an empty message", contractx.ErrSchemaViolation)
	}

	var (
		text strings.Builder
		out  contractx.ConverseResponse
	)
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		case anthropic.ToolUseBlock:
			if len(req.Tools) == 0 {
				continue
			}
			inv, err := newInvocation(b.ID, b.Name, string(b.Input))
			if err != nil {
				return contractx.ConverseResponse{}, err
			}
			out.ToolInvocations = append(out.ToolInvocations, inv)
		}
	}
	out.Text = strings.TrimSpace(text.String())
	return out, nil
}

// toAnthropicMessages groups consecutive tool results into one user message.
func toAnthropicMessages(messages []contractx.Message) []anthropic.MessageParam {
	var (
		out     []anthropic.MessageParam
		results []anthropic.ContentBlockParamUnion
	)
	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, m := range messages {
		switch m.Role {
		case contractx.RoleTool:
			results = append(results, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, m.IsError))
		case contractx.RoleUser:
			flush()
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case contractx.RoleAssistant:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, inv := range m.ToolInvocations {
				var input any = map[string]any{}
				if raw := rawArguments(inv); raw != "" {
					var decoded map[string]any
					if json.Unmarshal([]byte(raw), &decoded) == nil && decoded != nil {
						input = decoded
					}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(inv.ID, input, inv.ToolName))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		}
	}
	flush()
	return out
}

func toAnthropicTools(tools []contractx.ToolDescriptor) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := t.JSONSchema()
		tool := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema["properties"],
			},
		}
		if required, ok := schema["required"].([]string); ok {
			tool.InputSchema.Required = required
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out
}

func hasToolHistory(messages []contractx.Message) bool {
	for _, m := range messages {
		if m.Role == contractx.RoleTool || len(m.ToolInvocations) > 0 {
			return true
		}
	}
	return false
}

// historyTools declares a permissive tool per name seen in the history.
func historyTools(messages []contractx.Message) []anthropic.ToolUnionParam {
	seen := make(map[string]struct{})
	var descs []contractx.ToolDescriptor
	for _, m := range messages {
		for _, inv := range m.ToolInvocations {
			if _, ok := seen[inv.ToolName]; ok {
				continue
			}
			seen[inv.ToolName] = struct{}{}
			descs = append(descs, contractx.ToolDescriptor{Name: inv.ToolName, Description: inv.ToolName})
		}
	}
	return toAnthropicTools(descs)
}
