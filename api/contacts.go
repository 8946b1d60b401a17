package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tanpawarit/contact-assistant/agent/contact"
)

const identityRequiredMessage = "Validation failed: At least one of name or email is required"

type contactHandler struct {
	store contact.Store
}

type createContactRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

func (h contactHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := contact.ListFilter{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	items, err := h.store.List(r.Context(), filter)
	if err != nil {
		writeFailure(w, r, err, "Failed to fetch contacts")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: items})
}

func (h contactHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := contact.NewContact{
		Name:  blankToNil(req.Name),
		Email: blankToNil(req.Email),
		Phone: blankToNil(req.Phone),
		Notes: blankToNil(req.Notes),
	}
	if !in.HasIdentity() {
		writeError(w, http.StatusBadRequest, identityRequiredMessage)
		return
	}

	created, err := h.store.Insert(r.Context(), in)
	if err != nil {
		writeFailure(w, r, err, "Failed to create contact")
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: created})
}

func (h contactHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	var patch contact.Patch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if patch.Name.Set || patch.Email.Set {
		current, err := h.store.Get(r.Context(), id)
		if err != nil {
			writeFailure(w, r, err, "Failed to update contact")
			return
		}
		patch.Apply(current)
		if !hasIdentity(current) {
			writeError(w, http.StatusBadRequest, identityRequiredMessage)
			return
		}
	}

	updated, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		writeFailure(w, r, err, "Failed to update contact")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: updated})
}

func (h contactHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, "Failed to delete contact")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: deleted})
}

func contactID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func hasIdentity(c *contact.Contact) bool {
	return contact.NewContact{Name: c.Name, Email: c.Email}.HasIdentity()
}
