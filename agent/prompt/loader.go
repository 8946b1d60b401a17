package prompt

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const dateLayout = "2006-01-02"

var (
	//go:embed template/system.txt
	systemRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	System string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System: strings.TrimSpace(systemRaw),
	}
}

// RenderSystem fills the system template with the date of now in UTC.
func (p PromptSet) RenderSystem(ctx context.Context, now time.Time) (string, error) {
	template := einoprompt.FromMessages(schema.FString, schema.SystemMessage(p.System))
	msgs, err := template.Format(ctx, map[string]any{
		"today": now.UTC().Format(dateLayout),
	})
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("render system prompt: no message produced")
	}
	return msgs[0].Content, nil
}
