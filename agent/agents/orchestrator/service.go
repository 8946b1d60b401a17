package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
	nodex "github.com/tanpawarit/contact-assistant/agent/nodes"
	promptx "github.com/tanpawarit/contact-assistant/agent/prompt"
)

var (
	ErrInvalidPrompt = nodex.ErrInvalidPrompt
)

const (
	invalidPromptMessage = "Prompt is required and must be a string"
	turnFailedMessage    = "Failed to process agent request"
)

type Config struct {
	ModelTimeout time.Duration `envconfig:"MODEL_TIMEOUT" split_words:"true" default:"30s"`
}

type Orchestrator struct {
	client   contractx.ModelClient
	tools    []contractx.ToolDescriptor
	executor contractx.ToolExecutor
	prompts  promptx.PromptSet

	graphRunner compose.Runnable[nodex.TurnInput, nodex.TurnOutput]

	modelTimeout time.Duration
	now          func() time.Time
}

// TurnResult is the outcome of one agent turn. Failures carry a stable kind.
type TurnResult struct {
	Success   bool
	Response  string
	ToolsUsed []string
	Error     string
	Message   string
	Kind      contractx.ErrorKind
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func New(
	client contractx.ModelClient,
	tools []contractx.ToolDescriptor,
	executor contractx.ToolExecutor,
	cfg Config,
	opts ...Option,
) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("model client is required")
	}
	if executor == nil {
		return nil, errors.New("tool executor is required")
	}

	o := &Orchestrator{
		client:       client,
		tools:        append([]contractx.ToolDescriptor(nil), tools...),
		executor:     executor,
		prompts:      promptx.LoadPromptSet(),
		modelTimeout: cfg.ModelTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Run executes one turn and returns the final answer with the tools dispatched.
func (o *Orchestrator) Run(ctx context.Context, prompt string) (nodex.TurnOutput, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.TurnInput{Prompt: prompt})
	if err != nil {
		return nodex.TurnOutput{}, err
	}
	return out, nil
}

// RunAgentTurn is Run with every failure converted into a TurnResult.
func (o *Orchestrator) RunAgentTurn(ctx context.Context, prompt string) TurnResult {
	out, err := o.Run(ctx, prompt)
	if err == nil {
		log.Info().Strs("tools_used", out.ToolsUsed).Msg("agent turn completed")
		return TurnResult{
			Success:   true,
			Response:  out.Response,
			ToolsUsed: out.ToolsUsed,
		}
	}

	kind := contractx.KindOf(err)
	if kind == contractx.KindValidation {
		return TurnResult{
			Error:   invalidPromptMessage,
			Message: err.Error(),
			Kind:    kind,
		}
	}

	log.Error().Err(err).Str("kind", string(kind)).Msg("agent turn failed")
	return TurnResult{
		Error:   turnFailedMessage,
		Message: err.Error(),
		Kind:    kind,
	}
}
