package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/tanpawarit/contact-assistant/agent/contact"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

type SearchContactsArgs struct {
	Query string `json:"query"`
}

type SearchContactsOutput struct {
	Results []contact.Contact `json:"results"`
	Count   int               `json:"count"`
}

// searchContacts matches the query case-insensitively against name, email and notes.
func searchContacts(ctx context.Context, store contact.Store, args SearchContactsArgs) (SearchContactsOutput, error) {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return SearchContactsOutput{}, fmt.Errorf("%w: query is required", contractx.ErrValidation)
	}

	results, err := store.Search(ctx, query)
	if err != nil {
		return SearchContactsOutput{}, err
	}
	if results == nil {
		results = []contact.Contact{}
	}
	return SearchContactsOutput{Results: results, Count: len(results)}, nil
}
