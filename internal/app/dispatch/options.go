package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jsamuelsen11/go-dispatch-service/internal/domain"
)

const schemaBaseURL = "https://dispatch.local/schemas/"

// fieldBody is the ValidationError key for failures not tied to a field.
const fieldBody = "body"

var schemaPrinter = message.NewPrinter(language.English)

// BindOption customizes a single binding.
type BindOption func(*bindOptions)

type bindOptions struct {
	schema      string
	description string
}

// WithSchema attaches a JSON Schema that action payloads must satisfy before
// they are decoded. The schema is compiled at bind time; an invalid schema
// fails the binding.
func WithSchema(schema string) BindOption {
	return func(o *bindOptions) { o.schema = schema }
}

// WithDescription attaches a human-readable description to the binding.
func WithDescription(description string) BindOption {
	return func(o *bindOptions) { o.description = description }
}

func compileSchema(actionType, raw string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema for %q: %w", actionType, err)
	}

	url := schemaBaseURL + actionType + ".json"
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource for %q: %w", actionType, err)
	}

	schema, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %q: %w", actionType, err)
	}
	return schema, nil
}

// selfValidator is implemented by actions that check their own invariants
// after decoding.
type selfValidator interface {
	Validate() error
}

// Decode builds the action registered under actionType from its JSON
// payload. The payload is checked against the binding's schema first, then
// decoded, then validated by the action itself if it has a Validate method.
// An empty payload decodes to the zero action.
func (r *Registry) Decode(actionType string, payload []byte) (Action, error) {
	binding, ok := r.Lookup(actionType)
	if !ok {
		return nil, &UnregisteredActionError{ActionType: actionType}
	}

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	if binding.schema != nil {
		inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
		if err != nil {
			return nil, domain.NewValidationError(fieldBody, "invalid JSON")
		}
		if err := binding.schema.Validate(inst); err != nil {
			return nil, schemaError(err)
		}
	}

	return binding.decode(payload)
}

func decodeFunc[A Action]() func(payload []byte) (Action, error) {
	return func(payload []byte) (Action, error) {
		var action A
		dec := json.NewDecoder(bytes.NewReader(payload))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&action); err != nil {
			return nil, domain.NewValidationError(fieldBody, decodeMessage(err))
		}
		if v, ok := any(action).(selfValidator); ok {
			if err := v.Validate(); err != nil {
				return nil, err
			}
		}
		return action, nil
	}
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("field %q must be %s", typeErr.Field, typeErr.Type)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "invalid JSON"
	}
	return err.Error()
}

// schemaError flattens a jsonschema validation tree into field-level messages
// keyed by the dotted instance location.
func schemaError(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return domain.NewValidationError(fieldBody, err.Error())
	}

	fields := make(map[string]string)
	collectViolations(verr, fields)
	if len(fields) == 0 {
		fields[fieldBody] = verr.Error()
	}
	return &domain.ValidationError{Fields: fields}
}

func collectViolations(verr *jsonschema.ValidationError, fields map[string]string) {
	if len(verr.Causes) == 0 {
		field := fieldBody
		if len(verr.InstanceLocation) > 0 {
			field = strings.Join(verr.InstanceLocation, ".")
		}
		msg := verr.ErrorKind.LocalizedString(schemaPrinter)
		if prev, ok := fields[field]; ok {
			msg = prev + "; " + msg
		}
		fields[field] = msg
		return
	}
	for _, cause := range verr.Causes {
		collectViolations(cause, fields)
	}
}
