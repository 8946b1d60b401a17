package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ""},
		{fmt.Errorf("%w: prompt is required", ErrValidation), KindValidation},
		{fmt.Errorf("%w: email taken", ErrConflict), KindConflict},
		{fmt.Errorf("%w: deleteEverything", ErrUnknownTool), KindUnknownTool},
		{fmt.Errorf("%w: %w: deadline", ErrServiceUnavailable, ErrUpstream), KindServiceUnavailable},
		{fmt.Errorf("%w: 502", ErrUpstream), KindUpstream},
		{fmt.Errorf("%w: bad json", ErrSchemaViolation), KindUpstream},
		{fmt.Errorf("%w: contact 7", ErrNotFound), KindNotFound},
		{fmt.Errorf("%w: api key", ErrConfiguration), KindConfiguration},
		{errors.New("boom"), KindInternal},
	}

	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestToolDescriptorJSONSchema(t *testing.T) {
	t.Parallel()

	d := ToolDescriptor{
		Name: "searchContacts",
		Params: []ParamSpec{
			{Name: "query", Type: "string", Description: "q", Required: true, MinLength: 1},
			{Name: "limit", Type: "integer", Description: "n"},
		},
	}

	got := d.JSONSchema()
	if got["type"] != "object" {
		t.Fatalf("unexpected type: %v", got["type"])
	}
	required, ok := got["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "query" {
		t.Fatalf("unexpected required: %#v", got["required"])
	}
	props := got["properties"].(map[string]any)
	query := props["query"].(map[string]any)
	if query["minLength"] != 1 {
		t.Fatalf("unexpected minLength: %#v", query)
	}
	if _, ok := props["limit"].(map[string]any)["minLength"]; ok {
		t.Fatal("minLength must be omitted when zero")
	}
}

func TestToolInvocationResultContent(t *testing.T) {
	t.Parallel()

	ok := ToolInvocationResult{
		ID:       "call_1",
		ToolName: "searchContacts",
		Success:  true,
		Payload:  map[string]any{"count": 0, "results": []any{}},
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(ok.Content()), &decoded); err != nil {
		t.Fatalf("unmarshal success content: %v", err)
	}
	if decoded["success"] != true || decoded["count"] != float64(0) {
		t.Fatalf("unexpected success content: %#v", decoded)
	}

	failed := ToolInvocationResult{
		ID:        "call_2",
		ToolName:  "deleteEverything",
		Error:     "Unknown function: deleteEverything",
		ErrorKind: KindUnknownTool,
	}
	decoded = nil
	if err := json.Unmarshal([]byte(failed.Content()), &decoded); err != nil {
		t.Fatalf("unmarshal failure content: %v", err)
	}
	if decoded["success"] != false {
		t.Fatalf("expected success=false, got %#v", decoded)
	}
	if decoded["error"] != "Unknown function: deleteEverything" {
		t.Fatalf("unexpected error: %#v", decoded["error"])
	}
	if decoded["kind"] != string(KindUnknownTool) {
		t.Fatalf("unexpected kind: %#v", decoded["kind"])
	}

	msg := ToolResultMessage(failed)
	if msg.Role != RoleTool || msg.ToolCallID != "call_2" || !msg.IsError {
		t.Fatalf("unexpected tool message: %#v", msg)
	}
}
