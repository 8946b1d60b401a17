package contract

import "context"

// ModelClient is the single capability every language model vendor adapter provides.
type ModelClient interface {
	Converse(ctx context.Context, req ConverseRequest) (ConverseResponse, error)
}

// ToolExecutor runs one requested tool. It never returns an error; failures are
// encoded in the result.
type ToolExecutor interface {
	Execute(ctx context.Context, req ToolInvocationRequest) ToolInvocationResult
}
