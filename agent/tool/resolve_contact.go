package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/contact-assistant/agent/contact"
	contractx "github.com/tanpawarit/contact-assistant/agent/contract"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"

	// TimestampLayout formats note entry timestamps in UTC with milliseconds.
	TimestampLayout = "2006-01-02T15:04:05.000Z"

	defaultInteractionNote = "Contact interaction"
	noteSeparator          = "\n\n"
)

var interactionDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type ResolveContactArgs struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	NewNotes        string `json:"newNotes"`
	InteractionDate string `json:"interactionDate"`
}

type ResolveContactOutput struct {
	Action  string           `json:"action"`
	Contact *contact.Contact `json:"contact"`
}

func resolveContact(ctx context.Context, store contact.Store, now func() time.Time, args ResolveContactArgs) (ResolveContactOutput, error) {
	args = args.normalized()
	if args.Name == "" && args.Email == "" {
		return ResolveContactOutput{}, fmt.Errorf("%w: At least one of name or email is required", contractx.ErrValidation)
	}

	ts := interactionTime(args.InteractionDate, now)

	existing, err := matchContact(ctx, store, args)
	if err != nil {
		return ResolveContactOutput{}, err
	}
	if existing != nil {
		return updateContact(ctx, store, existing, args, ts)
	}

	created, err := store.Insert(ctx, newContactFrom(args, ts))
	if err == nil {
		log.Info().Int64("contact_id", created.ID).Msg("contact created")
		return ResolveContactOutput{Action: ActionCreated, Contact: created}, nil
	}
	if !errors.Is(err, contractx.ErrConflict) {
		return ResolveContactOutput{}, err
	}

	// A concurrent request created the same email between match and insert.
	log.Warn().Err(err).Msg("contact insert conflicted, retrying match")
	existing, retryErr := matchContact(ctx, store, args)
	if retryErr != nil {
		return ResolveContactOutput{}, retryErr
	}
	if existing == nil {
		return ResolveContactOutput{}, err
	}
	return updateContact(ctx, store, existing, args, ts)
}

// matchContact looks up by exact email first, then by exact name. It returns
// nil without error when nothing matches.
func matchContact(ctx context.Context, store contact.Store, args ResolveContactArgs) (*contact.Contact, error) {
	if args.Email != "" {
		c, err := store.FindByEmail(ctx, args.Email)
		switch {
		case err == nil:
			return c, nil
		case !errors.Is(err, contractx.ErrNotFound):
			return nil, err
		}
	}
	if args.Name != "" {
		c, err := store.FindByName(ctx, args.Name)
		switch {
		case err == nil:
			return c, nil
		case !errors.Is(err, contractx.ErrNotFound):
			return nil, err
		}
	}
	return nil, nil
}

func updateContact(ctx context.Context, store contact.Store, existing *contact.Contact, args ResolveContactArgs, ts time.Time) (ResolveContactOutput, error) {
	updated, err := store.Update(ctx, existing.ID, mergePatch(existing, args, ts))
	if err != nil {
		return ResolveContactOutput{}, err
	}
	log.Info().Int64("contact_id", updated.ID).Msg("contact updated")
	return ResolveContactOutput{Action: ActionUpdated, Contact: updated}, nil
}

// mergePatch keeps existing identity fields unless the input supplies a
// non-empty value, and always appends a note entry.
func mergePatch(existing *contact.Contact, args ResolveContactArgs, ts time.Time) contact.Patch {
	var patch contact.Patch
	if args.Name != "" {
		patch.Name = contact.Some(args.Name)
	}
	if args.Email != "" {
		patch.Email = contact.Some(args.Email)
	}
	if args.Phone != "" {
		patch.Phone = contact.Some(args.Phone)
	}

	text := args.NewNotes
	if text == "" {
		text = defaultInteractionNote
	}
	notes := noteEntry(ts, text)
	if existing.Notes != nil && *existing.Notes != "" {
		notes = *existing.Notes + noteSeparator + notes
	}
	patch.Notes = contact.Some(notes)
	patch.LastContactedAt = contact.Some(ts)
	return patch
}

func newContactFrom(args ResolveContactArgs, ts time.Time) contact.NewContact {
	in := contact.NewContact{
		Name:            optionalString(args.Name),
		Email:           optionalString(args.Email),
		Phone:           optionalString(args.Phone),
		LastContactedAt: &ts,
	}
	if args.NewNotes != "" {
		notes := noteEntry(ts, args.NewNotes)
		in.Notes = &notes
	}
	return in
}

func noteEntry(ts time.Time, text string) string {
	return fmt.Sprintf("[%s] %s", ts.UTC().Format(TimestampLayout), text)
}

// interactionTime parses raw as an ISO-8601 date or time. Absent or
// unparseable values fall back to now.
func interactionTime(raw string, now func() time.Time) time.Time {
	if raw != "" {
		for _, layout := range interactionDateLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts.UTC()
			}
		}
		log.Debug().Str("interaction_date", raw).Msg("unparseable interaction date, using now")
	}
	return now().UTC()
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (a ResolveContactArgs) normalized() ResolveContactArgs {
	return ResolveContactArgs{
		Name:            strings.TrimSpace(a.Name),
		Email:           strings.TrimSpace(a.Email),
		Phone:           strings.TrimSpace(a.Phone),
		NewNotes:        strings.TrimSpace(a.NewNotes),
		InteractionDate: strings.TrimSpace(a.InteractionDate),
	}
}
