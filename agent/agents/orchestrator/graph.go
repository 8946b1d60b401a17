package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/contact-assistant/agent/nodes"
)

// compileTurnGraph wires one conversation turn with at most one tool round.
func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.TurnInput, nodex.TurnOutput], error) {
	graph := compose.NewGraph[nodex.TurnInput, nodex.TurnOutput]()

	if err := graph.AddLambdaNode(nodex.NodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.TurnInput) (*nodex.TurnState, error) {
			return nodex.ValidateRequest(ctx, in, o.prompts, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeRequestModel,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.RequestModel(ctx, in, o.client, o.tools, o.modelTimeout)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node request_model: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeAnswerDirectly,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (nodex.TurnOutput, error) {
			return nodex.AnswerDirectly(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node answer_directly: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeExecuteTools,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (*nodex.TurnState, error) {
			return nodex.ExecuteTools(ctx, in, o.executor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_tools: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeRequestFollowUp,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.TurnState) (nodex.TurnOutput, error) {
			return nodex.RequestFollowUp(ctx, in, o.client, o.modelTimeout)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node request_follow_up: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.TurnState) (string, error) {
			return nodex.NextAfterModel(in), nil
		},
		map[string]bool{
			nodex.NodeAnswerDirectly: true,
			nodex.NodeExecuteTools:   true,
		},
	)
	if err := graph.AddBranch(nodex.NodeRequestModel, branch); err != nil {
		return nil, fmt.Errorf("add branch after request_model: %w", err)
	}

	edges := [][2]string{
		{compose.START, nodex.NodeValidateRequest},
		{nodex.NodeValidateRequest, nodex.NodeRequestModel},
		{nodex.NodeExecuteTools, nodex.NodeRequestFollowUp},
		{nodex.NodeAnswerDirectly, compose.END},
		{nodex.NodeRequestFollowUp, compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.agent_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
