package httpx

import (
	"context"

	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/service"
)

// Unexported context key types avoid collisions across packages.
type (
	controllerKey struct{}
	clientIDKey   struct{}
)

// SetControllerInContext returns a child context carrying the client's session controller.
func SetControllerInContext(ctx context.Context, c *service.SessionController) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, controllerKey{}, c)
}

// ControllerFromContext returns the session controller installed by the Sessions middleware.
func ControllerFromContext(ctx context.Context) (*service.SessionController, bool) {
	c, ok := ctx.Value(controllerKey{}).(*service.SessionController)
	return c, ok && c != nil
}

// SessionFromContext returns a snapshot of the request's session. Without a
// controller the session is pending, which the guard treats as "not yet known".
func SessionFromContext(ctx context.Context) domainauth.Session {
	if c, ok := ControllerFromContext(ctx); ok {
		return c.Snapshot()
	}
	return domainauth.Session{}
}

func setClientIDInContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientIDFromContext returns the client namespace id assigned to the request.
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
