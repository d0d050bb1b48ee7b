package dispatch

import (
	"fmt"
	"reflect"

	"github.com/samber/do/v2"
)

// Resolve returns a handler factory that resolves H from the container on
// every call. H must be provided to the container before the first dispatch.
func Resolve[A Action, R any, H Handler[A, R]](i do.Injector) HandlerFactory[A, R] {
	return func() (Handler[A, R], error) {
		h, err := do.Invoke[H](i)
		if err != nil {
			return nil, fmt.Errorf("resolving handler %s: %w", reflect.TypeFor[H](), err)
		}
		return h, nil
	}
}

// ResolveNamed is like Resolve for services registered under a name.
func ResolveNamed[A Action, R any, H Handler[A, R]](i do.Injector, name string) HandlerFactory[A, R] {
	return func() (Handler[A, R], error) {
		h, err := do.InvokeNamed[H](i, name)
		if err != nil {
			return nil, fmt.Errorf("resolving handler %q: %w", name, err)
		}
		return h, nil
	}
}

// ResolveValidator returns a validator factory that resolves V from the
// container on every call.
func ResolveValidator[V SessionValidator](i do.Injector) ValidatorFactory {
	return func() (SessionValidator, error) {
		v, err := do.Invoke[V](i)
		if err != nil {
			return nil, fmt.Errorf("resolving validator %s: %w", reflect.TypeFor[V](), err)
		}
		return v, nil
	}
}

// ResolveNamedValidator is like ResolveValidator for services registered
// under a name.
func ResolveNamedValidator(i do.Injector, name string) ValidatorFactory {
	return func() (SessionValidator, error) {
		v, err := do.InvokeNamed[SessionValidator](i, name)
		if err != nil {
			return nil, fmt.Errorf("resolving validator %q: %w", name, err)
		}
		return v, nil
	}
}
