package orchestratornode

import "strings"

func AnswerDirectly(in *TurnState) (TurnOutput, error) {
	if in == nil {
		return TurnOutput{}, ErrNilState
	}

	reply := strings.TrimSpace(in.First.Text)
	if reply == "" {
		reply = FallbackDirectReply
	}
	return TurnOutput{Response: reply, ToolsUsed: []string{}}, nil
}
