// Package handler contains HTTP request handlers for the guestbook.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (query params, form fields, path values)
// 2. Call the service layer
// 3. Write the HTTP response (a rendered page, a redirect, or JSON)
//
// Handlers contain no business logic — they are the glue between HTTP and
// the service. One consequence worth calling out: every form-post handler
// answers with a redirect back to the listing, INCLUDING the cases the
// service reports as NotFound or Forbidden. The guestbook never renders an
// error page for a logical no-op, and a probing client cannot tell "that
// entry never existed" from "that entry is not yours".
package handler

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/sakif/guestbook/internal/apperror"
	"github.com/sakif/guestbook/internal/identity"
	"github.com/sakif/guestbook/internal/model"
	"github.com/sakif/guestbook/internal/service"
	"github.com/sakif/guestbook/internal/view"
)

// GuestbookHandler serves the listing page, the mutation endpoints, and the
// JSON API. It holds the parsed templates so they are compiled once at
// startup, not on every request.
type GuestbookHandler struct {
	svc       *service.Guestbook
	templates *template.Template
	logger    *slog.Logger
}

// NewGuestbookHandler creates the handler and parses the HTML templates.
//
// TEMPLATE COMPOSITION:
// base.html defines the page frame with a {{template "content" .}} slot;
// guestbook.html fills it with {{define "content"}}...{{end}}. Parsing both
// together is Go's equivalent of template inheritance.
func NewGuestbookHandler(svc *service.Guestbook, templateDir string, logger *slog.Logger) (*GuestbookHandler, error) {
	tmpl, err := template.ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "guestbook.html"),
	)
	if err != nil {
		return nil, err
	}

	return &GuestbookHandler{
		svc:       svc,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// listingData is what the templates render.
type listingData struct {
	Title    string
	Entries  []view.Entry
	Query    string
	MineOnly bool
}

// HandleListing serves the guestbook page.
//
// HTTP: GET /?q=<search>&mine=1
func (h *GuestbookHandler) HandleListing(w http.ResponseWriter, r *http.Request) {
	entries := h.buildProjection(r)

	data := listingData{
		Title:    "Guestbook",
		Entries:  entries,
		Query:    r.URL.Query().Get("q"),
		MineOnly: r.URL.Query().Get("mine") != "",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render listing", slog.String("error", err.Error()))
	}
}

// HandleAPIList serves the listing projection as JSON.
//
// HTTP: GET /api/entries?q=<search>&mine=1
func (h *GuestbookHandler) HandleAPIList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.buildProjection(r))
}

// HandleAPIGet serves one entry as JSON, annotated for the requesting client.
//
// HTTP: GET /api/entries/{id}
//
// An unknown id is a plain 404 here — the full listing is public, so unlike
// the delete path there is no existence information to protect.
func (h *GuestbookHandler) HandleAPIGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.annotate(r, entry))
}

// apiSubmitRequest is the JSON body accepted by HandleAPISubmit.
type apiSubmitRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// HandleAPISubmit creates a new entry from a JSON body.
//
// HTTP: POST /api/entries  (body: {"name": ..., "text": ...})
//
// The JSON surface reports outcomes the form surface hides behind redirects:
//
//   - malformed body  → 400 validation error
//   - sanitizer ate the whole message → 204 (dropped, same policy as the form)
//   - persistence failure → 500
//   - created → 201 with the stored entry, masked and annotated
func (h *GuestbookHandler) HandleAPISubmit(w http.ResponseWriter, r *http.Request) {
	var req apiSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body must be a JSON object with name and text"))
		return
	}

	entry, err := h.svc.Add(r.Context(), req.Name, req.Text, identity.ClientID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if entry == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, h.annotate(r, *entry))
}

// annotate builds the single-entry projection for the requesting client —
// the one-row analogue of buildProjection.
func (h *GuestbookHandler) annotate(r *http.Request, entry model.Entry) view.Entry {
	rows := view.Build([]model.Entry{entry}, view.Options{
		RequesterID: identity.ClientID(r.Context()),
		Now:         time.Now(),
	})
	return rows[0]
}

// buildProjection runs the view builder over a snapshot of the collection,
// scoped to the requesting client. Shared by the HTML and JSON listings so
// both always agree.
func (h *GuestbookHandler) buildProjection(r *http.Request) []view.Entry {
	return view.Build(h.svc.Entries(), view.Options{
		Query:       r.URL.Query().Get("q"),
		MineOnly:    r.URL.Query().Get("mine") != "",
		RequesterID: identity.ClientID(r.Context()),
		Now:         time.Now(),
	})
}

// HandleSubmit creates a new entry from the submit form.
//
// HTTP: POST /entries  (form fields: name, text)
//
// Always redirects back to the listing — including when the sanitizer eats
// the whole message and the submission is silently dropped. Only a
// persistence failure surfaces as a 500.
func (h *GuestbookHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	_, err := h.svc.Add(r.Context(),
		r.PostFormValue("name"),
		r.PostFormValue("text"),
		identity.ClientID(r.Context()),
	)
	if err != nil {
		http.Error(w, "Failed to save entry", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLike increments an entry's like counter.
//
// HTTP: POST /entries/{id}/like
//
// URL PARAMETERS:
// r.PathValue("id") extracts the {id} segment — chi populates the stdlib
// path values, so handlers don't need to import the router.
func (h *GuestbookHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Like(r.Context(), r.PathValue("id"))
	h.finishMutation(w, r, err)
}

// HandleUnlike decrements an entry's like counter (floored at zero).
//
// HTTP: POST /entries/{id}/unlike
func (h *GuestbookHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Unlike(r.Context(), r.PathValue("id"))
	h.finishMutation(w, r, err)
}

// HandleDelete removes the requesting client's own entry.
//
// HTTP: POST /entries/{id}/delete
func (h *GuestbookHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), r.PathValue("id"), identity.ClientID(r.Context()))
	h.finishMutation(w, r, err)
}

// finishMutation applies the shared response policy for like/unlike/delete:
//
//   - success            → redirect to the referring listing
//   - NotFound/Forbidden → the IDENTICAL redirect (logical no-op, debug log)
//   - anything else      → 500 (a persistence failure the visitor should see)
func (h *GuestbookHandler) finishMutation(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrForbidden):
		h.logger.Debug("mutation was a no-op", slog.String("reason", err.Error()))
	default:
		http.Error(w, "Failed to save entry", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, listingURL(r), http.StatusSeeOther)
}

// listingURL picks the redirect target after a mutation: the referring
// listing page (preserving its ?q= and &mine=1 filters) when there is one,
// the bare listing otherwise. Only the referrer's local path and query are
// reused — redirecting to a foreign absolute URL taken from a request
// header would be an open redirect.
func listingURL(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || !strings.HasPrefix(ref.Path, "/") {
		return "/"
	}
	target := url.URL{Path: ref.Path, RawQuery: ref.RawQuery}
	return target.String()
}
