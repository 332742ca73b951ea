package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bookms/bookms-admin/internal/domain/catalog"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/service"
)

// BookLister is the catalog surface the book pages need.
type BookLister interface {
	ListBooks(ctx context.Context, in service.ListBooksInput) (service.Listing, error)
	Facets(ctx context.Context) (catalog.Facets, error)
}

// UIHandlers serves the server-rendered dashboard pages.
type UIHandlers struct {
	T       *TemplateRenderer
	Catalog BookLister
	Logger  *slog.Logger
}

func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// renderDashboardPage renders the full layout, or only the content section for
// htmx navigation.
func (h *UIHandlers) renderDashboardPage(w http.ResponseWriter, r *http.Request, data PageData) {
	renderPage(h.T, w, r, data, h.logger())
}

// renderPage is shared by every handler set that renders into the layout.
func renderPage(t *TemplateRenderer, w http.ResponseWriter, r *http.Request, data PageData, logger *slog.Logger) {
	if t == nil {
		http.Error(w, "templates unavailable", http.StatusInternalServerError)
		return
	}
	var err error
	if WantsPartial(r) {
		SetHXPushURL(w, r.URL.RequestURI())
		err = t.RenderPartial(w, r, data)
	} else {
		err = t.RenderFull(w, r, data)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "page render failed",
			slog.String("page", data.CurrentPage),
			slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// ErrorView is the model of the standalone error page.
type ErrorView struct {
	Title   string
	Code    int
	Message string
}

// HTTPStatus is the response code the renderer writes.
func (v ErrorView) HTTPStatus() int { return v.Code }

// serverError logs err and renders the generic failure response.
func (h *UIHandlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	if isAPIRequest(r) {
		WriteAppError(w, err)
		return
	}
	if IsHTMX(r) {
		SetToast(w, Toast{Variant: "error", Title: "Something went wrong", Message: "Please try again."})
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if h.T == nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	view := ErrorView{Title: "Error - BookMS", Code: http.StatusInternalServerError, Message: "Something went wrong. Please try again."}
	if renderErr := h.T.RenderError(w, r, view); renderErr != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// badRequest reports a validation failure in the caller's format.
func (h *UIHandlers) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	msg := apperrors.UserMessage(err, "The request was invalid.")
	switch {
	case isAPIRequest(r):
		WriteAppError(w, err)
	case IsHTMX(r):
		SetToast(w, Toast{Variant: "error", Title: "Invalid request", Message: msg})
		w.WriteHeader(http.StatusBadRequest)
	case h.T == nil:
		http.Error(w, msg, http.StatusBadRequest)
	default:
		view := ErrorView{Title: "Error - BookMS", Code: http.StatusBadRequest, Message: msg}
		if renderErr := h.T.RenderError(w, r, view); renderErr != nil {
			http.Error(w, msg, http.StatusBadRequest)
		}
	}
}
