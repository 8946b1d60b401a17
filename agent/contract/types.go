package contract

import (
	"encoding/json"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ParamSpec describes one argument accepted by a tool. Type is a JSON schema
// primitive type name.
type ParamSpec struct {
	Name        string
	Type        string
	Description string
	Required    bool
	MinLength   int
}

type ToolDescriptor struct {
	Name        string
	Description string
	Params      []ParamSpec
}

// JSONSchema renders the descriptor arguments as a JSON schema object.
func (d ToolDescriptor) JSONSchema() map[string]any {
	properties := make(map[string]any, len(d.Params))
	required := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.MinLength > 0 {
			prop["minLength"] = p.MinLength
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// RequiredParams returns the names of required arguments in declaration order.
func (d ToolDescriptor) RequiredParams() []string {
	var out []string
	for _, p := range d.Params {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

type ToolInvocationRequest struct {
	ID           string         `json:"id"`
	ToolName     string         `json:"tool_name"`
	Arguments    map[string]any `json:"arguments,omitempty"`
	RawArguments string         `json:"raw_arguments,omitempty"`
}

type ToolInvocationResult struct {
	ID        string    `json:"id"`
	ToolName  string    `json:"tool_name"`
	Success   bool      `json:"success"`
	Payload   any       `json:"payload,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorKind ErrorKind `json:"kind,omitempty"`
}

// Content renders the result as the JSON text handed back to the model.
// Payload fields are flattened next to the success flag.
func (r ToolInvocationResult) Content() string {
	body := map[string]any{"success": r.Success}
	if r.Success {
		if r.Payload != nil {
			raw, err := json.Marshal(r.Payload)
			if err == nil {
				var fields map[string]any
				if json.Unmarshal(raw, &fields) == nil {
					for k, v := range fields {
						body[k] = v
					}
				} else {
					body["result"] = json.RawMessage(raw)
				}
			}
		}
	} else {
		body["error"] = r.Error
		if r.ErrorKind != "" {
			body["kind"] = r.ErrorKind
		}
	}

	out, err := json.Marshal(body)
	if err != nil {
		return `{"success":false,"error":"failed to encode tool result"}`
	}
	return string(out)
}

// Message is one entry of the request-scoped conversation handed to a model.
type Message struct {
	Role            Role
	Content         string
	ToolInvocations []ToolInvocationRequest
	ToolCallID      string
	ToolName        string
	IsError         bool
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string, invocations []ToolInvocationRequest) Message {
	return Message{Role: RoleAssistant, Content: content, ToolInvocations: invocations}
}

func ToolResultMessage(res ToolInvocationResult) Message {
	return Message{
		Role:       RoleTool,
		Content:    res.Content(),
		ToolCallID: res.ID,
		ToolName:   res.ToolName,
		IsError:    !res.Success,
	}
}

type ConverseRequest struct {
	SystemInstruction string
	Messages          []Message
	// Tools is nil when the model must answer in text only.
	Tools []ToolDescriptor
}

type ConverseResponse struct {
	Text            string
	ToolInvocations []ToolInvocationRequest
}

func (r ConverseResponse) HasToolInvocations() bool {
	return len(r.ToolInvocations) > 0
}
