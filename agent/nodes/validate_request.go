package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
	promptx "github.com/tanpawarit/contact-assistant/agent/prompt"
)

var (
	ErrInvalidPrompt = fmt.Errorf("%w: prompt is required and must be a string", contractx.ErrValidation)
	ErrNilState      = errors.New("turn state is nil")
)

const (
	FallbackDirectReply = "I can help you manage your contacts."
	FallbackToolReply   = "Action completed successfully."
)

type TurnInput struct {
	Prompt string
}

type TurnOutput struct {
	Response  string
	ToolsUsed []string
}

// TurnState is the request-scoped conversation. It is never persisted.
type TurnState struct {
	Prompt            string
	Now               time.Time
	SystemInstruction string

	Messages  []contractx.Message
	First     contractx.ConverseResponse
	Results   []contractx.ToolInvocationResult
	ToolsUsed []string
}

func ValidateRequest(ctx context.Context, in TurnInput, prompts promptx.PromptSet, nowFn func() time.Time) (*TurnState, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return nil, ErrInvalidPrompt
	}

	now := nowFn().UTC()
	system, err := prompts.RenderSystem(ctx, now)
	if err != nil {
		return nil, err
	}

	return &TurnState{
		Prompt:            prompt,
		Now:               now,
		SystemInstruction: system,
		Messages:          []contractx.Message{contractx.UserMessage(prompt)},
		ToolsUsed:         []string{},
	}, nil
}
