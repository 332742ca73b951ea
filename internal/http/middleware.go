package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookms/bookms-admin/internal/domain/access"
	"github.com/bookms/bookms-admin/internal/observability/statsd"
	"github.com/bookms/bookms-admin/internal/service"
)

// MetricGuardDecision counts route guard outcomes, tagged by decision.
const MetricGuardDecision = service.MetricGuardDecision

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// isAPIRequest reports whether the caller expects JSON rather than HTML.
func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// skipsSession lists paths that never touch the session.
func skipsSession(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/static/") || r.URL.Path == "/healthz"
}

// ClientIdentityConfig configures the ClientIdentity middleware.
type ClientIdentityConfig struct {
	CookieDomain string
	// MaxAge is the cookie lifetime; zero makes it a browser-session cookie.
	MaxAge time.Duration
}

// ClientIdentity assigns every browser a client namespace id, stored in a
// cookie and placed in the request context.
func ClientIdentity(cfg ClientIdentityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipsSession(r) {
				next.ServeHTTP(w, r)
				return
			}
			id := ""
			if c, err := r.Cookie(ClientCookieName); err == nil {
				if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ClientCookieName,
					Value:    id,
					Path:     "/",
					Domain:   cfg.CookieDomain,
					HttpOnly: true,
					Secure:   isSecureRequest(r),
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(cfg.MaxAge.Seconds()),
				})
			}
			next.ServeHTTP(w, r.WithContext(setClientIDInContext(r.Context(), id)))
		})
	}
}

// Sessions resolves the client's session controller and installs it in the
// request context. A storage failure while restoring leaves the controller
// unauthenticated; the request proceeds and the failure is logged.
func Sessions(manager *service.SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ClientIDFromContext(r.Context())
			if id == "" || skipsSession(r) {
				next.ServeHTTP(w, r)
				return
			}
			ctrl, err := manager.Controller(r.Context(), id)
			if err != nil {
				logger.WarnContext(r.Context(), "session restore failed", slog.Any("error", err))
			}
			if ctrl == nil {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetControllerInContext(r.Context(), ctrl)))
		})
	}
}

// AccessConfig configures RequireAccess.
type AccessConfig struct {
	Route   access.Route
	Metrics statsd.Sink
}

// RequireAccess guards a protected route. Browser requests are redirected to
// the login or forbidden page; API requests get 401/403 JSON. A session that
// is still being restored yields 503 with Retry-After.
func RequireAccess(cfg AccessConfig) func(http.Handler) http.Handler {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = statsd.Discard
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := access.Evaluate(SessionFromContext(r.Context()), r.URL.RequestURI(), cfg.Route.Required)
			metrics.Count(MetricGuardDecision, 1, map[string]string{"decision": d.Kind.String()})
			if d.Kind == access.Allow {
				next.ServeHTTP(w, r)
				return
			}
			writeDecision(w, r, d)
		})
	}
}

// PublicOnly lets unauthenticated visitors through and sends authenticated
// ones to the dashboard.
func PublicOnly(metrics statsd.Sink) func(http.Handler) http.Handler {
	if metrics == nil {
		metrics = statsd.Discard
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := access.EvaluatePublicOnly(SessionFromContext(r.Context()))
			metrics.Count(MetricGuardDecision, 1, map[string]string{"decision": d.Kind.String()})
			if d.Kind == access.Allow {
				next.ServeHTTP(w, r)
				return
			}
			writeDecision(w, r, d)
		})
	}
}

func writeDecision(w http.ResponseWriter, r *http.Request, d access.Decision) {
	api := isAPIRequest(r)
	switch d.Kind {
	case access.Suspend:
		w.Header().Set("Retry-After", "1")
		if api {
			WriteError(w, ErrorParams{
				Code:    http.StatusServiceUnavailable,
				ErrCode: "session_pending",
				Err:     errors.New("session is still loading"),
			})
			return
		}
		http.Error(w, "Session is loading, retry shortly", http.StatusServiceUnavailable)
	case access.RedirectLogin:
		if api {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "authentication_required",
				Err:     errors.New("authentication required"),
			})
			return
		}
		redirect(w, r, loginURL(d.From))
	case access.Forbidden:
		if api {
			WriteError(w, ErrorParams{
				Code:    http.StatusForbidden,
				ErrCode: "insufficient_permissions",
				Err:     errors.New("insufficient permissions"),
			})
			return
		}
		redirect(w, r, access.ForbiddenPath)
	case access.RedirectDashboard:
		if api {
			WriteError(w, ErrorParams{
				Code:    http.StatusConflict,
				ErrCode: "already_authenticated",
				Err:     errors.New("already signed in"),
			})
			return
		}
		redirect(w, r, access.DashboardPath)
	}
}
