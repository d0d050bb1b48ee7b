package dispatch_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
)

type ping struct{}

func (ping) ActionType() string { return "ping" }

type pong struct{ Reply string }

type echo struct {
	Message string `json:"message"`
}

func (echo) ActionType() string { return "echo" }

type echoed struct{ Message string }

// otherPing reuses the "ping" token with a different Go type.
type otherPing struct{ N int }

func (otherPing) ActionType() string { return "ping" }

type blank struct{}

func (blank) ActionType() string { return "" }

type ptrAction struct{}

func (*ptrAction) ActionType() string { return "ptr" }

// counter records how often factories and validators ran.
type counter struct {
	handlerBuilt   atomic.Int32
	handlerCalls   atomic.Int32
	validatorBuilt atomic.Int32
	validatorCalls atomic.Int32
}

func (c *counter) pingFactory(reply string) dispatch.HandlerFactory[ping, pong] {
	return func() (dispatch.Handler[ping, pong], error) {
		c.handlerBuilt.Add(1)
		return dispatch.HandlerFunc[ping, pong](func(context.Context, ping) (pong, error) {
			c.handlerCalls.Add(1)
			return pong{Reply: reply}, nil
		}), nil
	}
}

func (c *counter) validatorFactory(v dispatch.SessionValidator) dispatch.ValidatorFactory {
	return func() (dispatch.SessionValidator, error) {
		c.validatorBuilt.Add(1)
		return dispatch.ValidatorFunc(func(ctx context.Context, creds session.Credentials) error {
			c.validatorCalls.Add(1)
			return v.Validate(ctx, creds)
		}), nil
	}
}

var errBadInput = errors.New("bad input")

func failingEcho(msg string) dispatch.HandlerFactory[echo, echoed] {
	return dispatch.Handle[echo, echoed](dispatch.HandlerFunc[echo, echoed](
		func(context.Context, echo) (echoed, error) {
			return echoed{}, dispatch.NewActionError(msg, errBadInput)
		},
	))
}

func echoHandler() dispatch.HandlerFactory[echo, echoed] {
	return dispatch.Handle[echo, echoed](dispatch.HandlerFunc[echo, echoed](
		func(_ context.Context, a echo) (echoed, error) {
			return echoed(a), nil
		},
	))
}

func mustRegistry(t testing.TB, modules ...dispatch.Module) *dispatch.Registry {
	t.Helper()

	reg, err := dispatch.NewRegistry(nil, modules...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}

func anonymous() session.Credentials {
	return session.Credentials{ClientIP: "127.0.0.1"}
}
