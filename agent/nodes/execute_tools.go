package orchestratornode

import (
	"context"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

// ExecuteTools runs every requested invocation in order. Each one yields a
// result, failures included, and the tool exchange is appended to the history.
func ExecuteTools(ctx context.Context, in *TurnState, executor contractx.ToolExecutor) (*TurnState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	invocations := in.First.ToolInvocations
	in.Messages = append(in.Messages, contractx.AssistantMessage(in.First.Text, invocations))

	for _, inv := range invocations {
		res := executor.Execute(ctx, inv)
		res.ID = inv.ID
		res.ToolName = inv.ToolName

		logger := log.Info()
		if !res.Success {
			logger = log.Warn().Str("error", res.Error).Str("kind", string(res.ErrorKind))
		}
		logger.Str("tool", inv.ToolName).Str("call_id", inv.ID).Bool("success", res.Success).Msg("tool dispatched")

		in.Results = append(in.Results, res)
		in.ToolsUsed = append(in.ToolsUsed, inv.ToolName)
		in.Messages = append(in.Messages, contractx.ToolResultMessage(res))
	}
	return in, nil
}
