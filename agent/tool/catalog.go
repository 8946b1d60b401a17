package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/contact-assistant/agent/contact"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

const (
	ToolResolveContact = "resolveContact"
	ToolSearchContacts = "searchContacts"
)

// Executor dispatches a tool invocation by name. It satisfies contract.ToolExecutor.
type Executor func(ctx context.Context, req contractx.ToolInvocationRequest) contractx.ToolInvocationResult

func (e Executor) Execute(ctx context.Context, req contractx.ToolInvocationRequest) contractx.ToolInvocationResult {
	return e(ctx, req)
}

// BuildCatalog returns the tool descriptors offered to the model together with
// the executor that serves them.
func BuildCatalog(store contact.Store, now func() time.Time) ([]contractx.ToolDescriptor, Executor) {
	return Catalog(), NewExecutor(store, now)
}

func NewExecutor(store contact.Store, now func() time.Time) Executor {
	if now == nil {
		now = time.Now
	}
	descriptors := make(map[string]contractx.ToolDescriptor)
	for _, d := range Catalog() {
		descriptors[d.Name] = d
	}
	fallback := DefaultExecutor()

	return func(ctx context.Context, req contractx.ToolInvocationRequest) contractx.ToolInvocationResult {
		var (
			payload any
			err     error
		)
		switch req.ToolName {
		case ToolResolveContact:
			var args ResolveContactArgs
			if err = decodeArgs(req, descriptors[req.ToolName], &args); err == nil {
				payload, err = resolveContact(ctx, store, now, args)
			}
		case ToolSearchContacts:
			var args SearchContactsArgs
			if err = decodeArgs(req, descriptors[req.ToolName], &args); err == nil {
				payload, err = searchContacts(ctx, store, args)
			}
		default:
			return fallback(ctx, req)
		}

		if err != nil {
			log.Warn().Err(err).Str("tool", req.ToolName).Str("call_id", req.ID).Msg("tool invocation failed")
			return failure(req, err)
		}
		return contractx.ToolInvocationResult{
			ID:       req.ID,
			ToolName: req.ToolName,
			Success:  true,
			Payload:  payload,
		}
	}
}

// DefaultExecutor answers every invocation with an unknown-tool failure.
func DefaultExecutor() Executor {
	return func(_ context.Context, req contractx.ToolInvocationRequest) contractx.ToolInvocationResult {
		return contractx.ToolInvocationResult{
			ID:        req.ID,
			ToolName:  req.ToolName,
			Error:     fmt.Sprintf("Unknown function: %s", req.ToolName),
			ErrorKind: contractx.KindUnknownTool,
		}
	}
}

// Catalog returns the ordered tool descriptors. Each call returns a fresh slice.
func Catalog() []contractx.ToolDescriptor {
	return []contractx.ToolDescriptor{
		{
			Name: ToolResolveContact,
			Description: "Create a new contact or update an existing one. Use this when the user wants to add someone " +
				"or mentions meeting or contacting someone. Matches an existing contact by email first, then by name.",
			Params: []contractx.ParamSpec{
				{Name: "name", Type: "string", Description: "The full name of the contact"},
				{Name: "email", Type: "string", Description: "The email address of the contact"},
				{Name: "phone", Type: "string", Description: "The phone number of the contact"},
				{Name: "newNotes", Type: "string", Description: "New notes or context about this interaction to append"},
				{Name: "interactionDate", Type: "string", Description: "ISO-8601 date or time of the interaction, defaults to now"},
			},
		},
		{
			Name:        ToolSearchContacts,
			Description: "Search contacts by name, email, or notes. Use this when the user asks a question about their contacts.",
			Params: []contractx.ParamSpec{
				{Name: "query", Type: "string", Description: "Text matched against name, email, or notes", Required: true, MinLength: 1},
			},
		},
	}
}

func failure(req contractx.ToolInvocationRequest, err error) contractx.ToolInvocationResult {
	return contractx.ToolInvocationResult{
		ID:        req.ID,
		ToolName:  req.ToolName,
		Error:     err.Error(),
		ErrorKind: contractx.KindOf(err),
	}
}
