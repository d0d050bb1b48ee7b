// Package dispatch routes typed actions to their handlers.
//
// Every Action type is bound once, at start-up, to exactly one handler
// factory and one session validator factory. Binding happens through a
// Binder, usually from one or more Modules; the Binder is then frozen into a
// read-only Registry that a Dispatcher serves from:
//
//	reg, err := dispatch.NewRegistry(logger, actions.Module(injector))
//	d := dispatch.NewDispatcher(reg, logger, metrics)
//	pong, err := dispatch.Execute[Ping, Pong](ctx, d, creds, Ping{})
//
// Dispatch looks the binding up by the action's type token, runs the
// validator against the caller's credentials and only then constructs and
// executes the handler. Failures surface as one of four error types:
// DuplicateRegistrationError (configuration), UnregisteredActionError,
// SessionValidationError and ActionExecutionError (request time).
//
// A Registry is safe for concurrent use. A Binder is not meant to be shared
// across goroutines; it lives only for the duration of start-up.
package dispatch
