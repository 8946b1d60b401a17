package api

import (
	"context"
	"encoding/json"
	"net/http"

	orchestratorx "github.com/tanpawarit/contact-assistant/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

const invalidPromptMessage = "Prompt is required and must be a string"

// AgentRunner runs one agent turn. *orchestrator.Orchestrator satisfies it.
type AgentRunner interface {
	RunAgentTurn(ctx context.Context, prompt string) orchestratorx.TurnResult
}

type agentHandler struct {
	runner AgentRunner
}

type agentRequest struct {
	Prompt json.RawMessage `json:"prompt"`
}

type agentFailure struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Kind    contractx.ErrorKind `json:"kind,omitempty"`
}

func (h agentHandler) run(w http.ResponseWriter, r *http.Request) {
	var req agentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, agentFailure{Error: invalidPromptMessage, Kind: contractx.KindValidation})
		return
	}

	var prompt string
	if len(req.Prompt) == 0 || json.Unmarshal(req.Prompt, &prompt) != nil {
		writeJSON(w, http.StatusBadRequest, agentFailure{Error: invalidPromptMessage, Kind: contractx.KindValidation})
		return
	}

	res := h.runner.RunAgentTurn(r.Context(), prompt)
	if !res.Success {
		writeJSON(w, statusForKind(res.Kind), agentFailure{
			Error:   res.Error,
			Message: res.Message,
			Kind:    res.Kind,
		})
		return
	}

	toolsUsed := res.ToolsUsed
	if toolsUsed == nil {
		toolsUsed = []string{}
	}
	writeJSON(w, http.StatusOK, successfulTurn{
		Success:   true,
		Response:  res.Response,
		ToolsUsed: toolsUsed,
	})
}

// successfulTurn always serializes toolsUsed, even when empty.
type successfulTurn struct {
	Success   bool     `json:"success"`
	Response  string   `json:"response"`
	ToolsUsed []string `json:"toolsUsed"`
}
