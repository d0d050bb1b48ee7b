package validators

import (
	"context"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
)

// PrincipalResolver turns request credentials into an authenticated principal.
// JWT and Session both implement it.
type PrincipalResolver interface {
	Principal(ctx context.Context, creds session.Credentials) (session.Principal, error)
}

// PrincipalFromContext resolves the principal for the action currently being
// dispatched. Handlers of secured actions use it to learn who is calling.
func PrincipalFromContext(ctx context.Context, resolver PrincipalResolver) (session.Principal, error) {
	creds, _ := dispatch.CredentialsFromContext(ctx)
	return resolver.Principal(ctx, creds)
}
