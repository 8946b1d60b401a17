package orchestratornode

import (
	"context"
	"strings"
	"time"

	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

// RequestFollowUp asks for the final answer with the tool results and no tools.
func RequestFollowUp(
	ctx context.Context,
	in *TurnState,
	client contractx.ModelClient,
	timeout time.Duration,
) (TurnOutput, error) {
	if in == nil {
		return TurnOutput{}, ErrNilState
	}

	resp, err := converse(ctx, client, contractx.ConverseRequest{
		SystemInstruction: in.SystemInstruction,
		Messages:          in.Messages,
	}, timeout)
	if err != nil {
		return TurnOutput{}, err
	}

	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		reply = FallbackToolReply
	}
	return TurnOutput{Response: reply, ToolsUsed: in.ToolsUsed}, nil
}
