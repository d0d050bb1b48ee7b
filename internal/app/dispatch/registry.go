package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Binding is the registry entry for one action type. It is created once by
// Bind or BindSecure and never changes afterwards.
type Binding struct {
	actionType   string
	description  string
	actionGoType reflect.Type
	resultGoType reflect.Type
	secure       bool
	schema       *jsonschema.Schema

	newValidator ValidatorFactory
	execute      func(ctx context.Context, action Action) (Result, error)
	undo         func(ctx context.Context, action Action, result Result) (bool, error)
	decode       func(payload []byte) (Action, error)
}

// ActionType returns the token the binding is registered under.
func (b *Binding) ActionType() string { return b.actionType }

// Description returns the optional human-readable description.
func (b *Binding) Description() string { return b.description }

// ActionGoType returns the Go type of the bound action.
func (b *Binding) ActionGoType() reflect.Type { return b.actionGoType }

// ResultGoType returns the Go type of the bound result.
func (b *Binding) ResultGoType() reflect.Type { return b.resultGoType }

// Secure reports whether the binding carries an explicit validator.
func (b *Binding) Secure() bool { return b.secure }

// HasSchema reports whether action payloads are checked against a JSON Schema.
func (b *Binding) HasSchema() bool { return b.schema != nil }

// NewValidator constructs the binding's session validator.
func (b *Binding) NewValidator() (SessionValidator, error) {
	return b.newValidator()
}

// Module groups related bindings. It mirrors a configuration module that is
// installed once while the registry is being built.
type Module interface {
	ConfigureHandlers(b *Binder) error
}

// ModuleFunc adapts an ordinary function to the Module interface.
type ModuleFunc func(b *Binder) error

// ConfigureHandlers calls f(b).
func (f ModuleFunc) ConfigureHandlers(b *Binder) error {
	return f(b)
}

// Binder collects bindings during start-up. Freeze turns it into a Registry.
type Binder struct {
	logger *slog.Logger

	mu       sync.Mutex
	bindings map[string]*Binding
	frozen   bool
}

// NewBinder returns an empty Binder. A nil logger discards output.
func NewBinder(logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Binder{
		logger:   logger,
		bindings: make(map[string]*Binding),
	}
}

// Install configures m against the binder.
func (b *Binder) Install(m Module) error {
	if m == nil {
		return fmt.Errorf("%w: nil module", ErrInvalidBinding)
	}
	if err := m.ConfigureHandlers(b); err != nil {
		return fmt.Errorf("configuring module %T: %w", m, err)
	}
	return nil
}

// Freeze returns the read-only Registry of everything bound so far. Any
// later Bind on this binder fails with ErrRegistryFrozen.
func (b *Binder) Freeze() *Registry {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.frozen = true

	bindings := make(map[string]*Binding, len(b.bindings))
	types := make([]string, 0, len(b.bindings))
	for token, binding := range b.bindings {
		bindings[token] = binding
		types = append(types, token)
	}
	slices.Sort(types)

	return &Registry{bindings: bindings, types: types}
}

func (b *Binder) add(binding *Binding) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frozen {
		return fmt.Errorf("binding %q: %w", binding.actionType, ErrRegistryFrozen)
	}
	if _, exists := b.bindings[binding.actionType]; exists {
		return &DuplicateRegistrationError{ActionType: binding.actionType}
	}

	b.bindings[binding.actionType] = binding
	b.logger.Debug("action bound",
		slog.String("action_type", binding.actionType),
		slog.String("action", binding.actionGoType.String()),
		slog.String("result", binding.resultGoType.String()),
		slog.Bool("secure", binding.secure),
	)
	return nil
}

// Bind registers the handler factory for action type A with the allow-all
// validator. It fails with a *DuplicateRegistrationError if A's type token is
// already bound; the first binding persists.
func Bind[A Action, R any](b *Binder, newHandler HandlerFactory[A, R], opts ...BindOption) error {
	return bind(b, newHandler, nil, opts)
}

// BindSecure registers the handler factory for action type A together with an
// explicit validator factory. Duplicates are handled like in Bind.
func BindSecure[A Action, R any](b *Binder, newHandler HandlerFactory[A, R], newValidator ValidatorFactory, opts ...BindOption) error {
	if newValidator == nil {
		return fmt.Errorf("%w: nil validator factory for %s", ErrInvalidBinding, reflect.TypeFor[A]())
	}
	return bind(b, newHandler, newValidator, opts)
}

func bind[A Action, R any](b *Binder, newHandler HandlerFactory[A, R], newValidator ValidatorFactory, opts []BindOption) error {
	actionGoType := reflect.TypeFor[A]()
	switch actionGoType.Kind() {
	case reflect.Pointer, reflect.Interface:
		return fmt.Errorf("%w: action type %s must be a concrete value type", ErrInvalidBinding, actionGoType)
	}
	if newHandler == nil {
		return fmt.Errorf("%w: nil handler factory for %s", ErrInvalidBinding, actionGoType)
	}

	var zero A
	token := zero.ActionType()
	if token == "" {
		return fmt.Errorf("%w: %s has an empty action type", ErrInvalidBinding, actionGoType)
	}

	var o bindOptions
	for _, opt := range opts {
		opt(&o)
	}

	binding := &Binding{
		actionType:   token,
		description:  o.description,
		actionGoType: actionGoType,
		resultGoType: reflect.TypeFor[R](),
		secure:       newValidator != nil,
		newValidator: newValidator,
		execute:      executeFunc(newHandler),
		undo:         undoFunc(newHandler),
		decode:       decodeFunc[A](),
	}
	if binding.newValidator == nil {
		binding.newValidator = Guard(AllowAll)
	}
	if o.schema != "" {
		schema, err := compileSchema(token, o.schema)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBinding, err)
		}
		binding.schema = schema
	}

	return b.add(binding)
}

func executeFunc[A Action, R any](newHandler HandlerFactory[A, R]) func(context.Context, Action) (Result, error) {
	return func(ctx context.Context, action Action) (Result, error) {
		h, err := newHandler()
		if err != nil {
			return nil, NewActionError("constructing handler", err)
		}
		if h == nil {
			return nil, NewActionError("constructing handler", fmt.Errorf("%w: factory returned nil", ErrInvalidBinding))
		}
		r, err := h.Execute(ctx, action.(A))
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// undoFunc reports false when the handler does not implement Undoer.
func undoFunc[A Action, R any](newHandler HandlerFactory[A, R]) func(context.Context, Action, Result) (bool, error) {
	return func(ctx context.Context, action Action, result Result) (bool, error) {
		h, err := newHandler()
		if err != nil {
			return true, err
		}
		u, ok := h.(Undoer[A, R])
		if !ok {
			return false, nil
		}
		r, _ := result.(R)
		return true, u.Undo(ctx, action.(A), r)
	}
}

// Registry is the frozen set of bindings. It is safe for concurrent use.
type Registry struct {
	bindings map[string]*Binding
	types    []string
}

// NewRegistry installs every module into a fresh Binder and freezes it.
// Any configuration error aborts construction.
func NewRegistry(logger *slog.Logger, modules ...Module) (*Registry, error) {
	b := NewBinder(logger)
	for _, m := range modules {
		if err := b.Install(m); err != nil {
			return nil, err
		}
	}
	return b.Freeze(), nil
}

// Lookup returns the binding registered under actionType.
func (r *Registry) Lookup(actionType string) (*Binding, bool) {
	binding, ok := r.bindings[actionType]
	return binding, ok
}

// Types returns the registered action type tokens in sorted order.
func (r *Registry) Types() []string {
	return slices.Clone(r.types)
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	return len(r.bindings)
}

// Descriptor summarizes a binding for catalog listings.
type Descriptor struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Secure      bool   `json:"secure"`
	HasSchema   bool   `json:"has_schema"`
}

// Describe returns a Descriptor per binding, ordered by action type.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, 0, len(r.types))
	for _, b := range r.Bindings() {
		out = append(out, Descriptor{
			Type:        b.actionType,
			Description: b.description,
			Secure:      b.secure,
			HasSchema:   b.schema != nil,
		})
	}
	return out
}

// Bindings returns every binding ordered by action type.
func (r *Registry) Bindings() []*Binding {
	out := make([]*Binding, 0, len(r.types))
	for _, token := range r.types {
		out = append(out, r.bindings[token])
	}
	return out
}
