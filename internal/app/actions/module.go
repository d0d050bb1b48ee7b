package actions

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/do/v2"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/app/validators"
	"github.com/jsamuelsen11/go-dispatch-service/internal/ports"
)

// Names of the session validators the module resolves from the container.
const (
	ValidatorIssuer  = "validator.issuer"
	ValidatorSession = "validator.session"
	ValidatorAdmin   = "validator.admin"
)

// Module binds every action of the catalog. Handlers and validators are
// resolved from i per dispatch, so Provide must have run on i before the
// first request. Pass the container's root scope, not the injector a
// provider receives: the latter carries the provider's invocation chain, and
// resolving *CatalogHandler through it is reported as a circular dependency.
func Module(i do.Injector) dispatch.Module {
	return dispatch.ModuleFunc(func(b *dispatch.Binder) error {
		return errors.Join(
			dispatch.Bind(b, dispatch.Resolve[Ping, Pong, *PingHandler](i),
				dispatch.WithDescription("Liveness probe through the dispatcher.")),
			dispatch.Bind(b, dispatch.Resolve[Echo, Echoed, *EchoHandler](i),
				dispatch.WithDescription("Returns the message unchanged."),
				dispatch.WithSchema(echoSchema)),
			dispatch.BindSecure(b, dispatch.Resolve[OpenSession, SessionOpened, *OpenSessionHandler](i),
				dispatch.ResolveNamedValidator(i, ValidatorIssuer),
				dispatch.WithDescription("Opens a server-side session for a subject."),
				dispatch.WithSchema(openSessionSchema)),
			dispatch.BindSecure(b, dispatch.Resolve[WhoAmI, Identity, *WhoAmIHandler](i),
				dispatch.ResolveNamedValidator(i, ValidatorSession),
				dispatch.WithDescription("Describes the caller's session.")),
			dispatch.BindSecure(b, dispatch.Resolve[CloseSession, SessionClosed, *CloseSessionHandler](i),
				dispatch.ResolveNamedValidator(i, ValidatorSession),
				dispatch.WithDescription("Closes the caller's session.")),
			dispatch.BindSecure(b, dispatch.Resolve[ListCatalog, Catalog, *CatalogHandler](i),
				dispatch.ResolveNamedValidator(i, ValidatorAdmin),
				dispatch.WithDescription("Lists the registered actions.")),
		)
	})
}

// Config holds what the catalog's handlers and validators need beyond the
// container's services.
type Config struct {
	Sessions SessionPolicy
	JWT      validators.JWTConfig
	// AdminPolicy is the expr-lang expression guarding admin actions.
	AdminPolicy string
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Provide registers the catalog's handlers and validators in i. It expects
// ports.SessionStore, *slog.Logger and CatalogSource to be provided there.
// The admin policy is compiled eagerly so a bad expression fails start-up.
func Provide(i do.Injector, cfg Config) error {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.JWT.Now == nil {
		cfg.JWT.Now = cfg.Now
	}

	do.Provide(i, func(i do.Injector) (*validators.JWT, error) {
		return validators.NewJWT(cfg.JWT)
	})
	do.Provide(i, func(i do.Injector) (*validators.Session, error) {
		store, err := do.Invoke[ports.SessionStore](i)
		if err != nil {
			return nil, err
		}
		return validators.NewSession(store, validators.WithClock(cfg.Now)), nil
	})

	do.ProvideNamed(i, ValidatorIssuer, func(i do.Injector) (dispatch.SessionValidator, error) {
		return do.Invoke[*validators.JWT](i)
	})
	do.ProvideNamed(i, ValidatorSession, func(i do.Injector) (dispatch.SessionValidator, error) {
		return do.Invoke[*validators.Session](i)
	})
	do.ProvideNamed(i, ValidatorAdmin, func(i do.Injector) (dispatch.SessionValidator, error) {
		resolver, err := do.Invoke[*validators.Session](i)
		if err != nil {
			return nil, err
		}
		return validators.NewExpr(cfg.AdminPolicy, resolver)
	})

	do.Provide(i, func(do.Injector) (*PingHandler, error) {
		return NewPingHandler(cfg.Now), nil
	})
	do.Provide(i, func(do.Injector) (*EchoHandler, error) {
		return NewEchoHandler(), nil
	})
	do.Provide(i, func(i do.Injector) (*OpenSessionHandler, error) {
		store, err := do.Invoke[ports.SessionStore](i)
		if err != nil {
			return nil, err
		}
		return NewOpenSessionHandler(store, cfg.Sessions, cfg.Now, loggerFrom(i)), nil
	})
	do.Provide(i, func(i do.Injector) (*WhoAmIHandler, error) {
		resolver, err := do.Invoke[*validators.Session](i)
		if err != nil {
			return nil, err
		}
		return NewWhoAmIHandler(resolver), nil
	})
	do.Provide(i, func(i do.Injector) (*CloseSessionHandler, error) {
		store, err := do.Invoke[ports.SessionStore](i)
		if err != nil {
			return nil, err
		}
		return NewCloseSessionHandler(store, loggerFrom(i)), nil
	})
	do.Provide(i, func(i do.Injector) (*CatalogHandler, error) {
		source, err := do.Invoke[CatalogSource](i)
		if err != nil {
			return nil, err
		}
		return NewCatalogHandler(source), nil
	})

	if _, err := do.InvokeNamed[dispatch.SessionValidator](i, ValidatorAdmin); err != nil {
		return fmt.Errorf("admin policy: %w", err)
	}
	return nil
}

func loggerFrom(i do.Injector) *slog.Logger {
	logger, err := do.Invoke[*slog.Logger](i)
	if err != nil {
		return nil
	}
	return logger
}
