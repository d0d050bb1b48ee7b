// Package remote is the outbound adapter for a dispatch endpoint served by
// another instance of this service. It plays the role of an asynchronous
// dispatch front end: callers hand it actions, it posts them over HTTP and
// turns problem responses back into the typed dispatch errors.
//
// Transport concerns (circuit breaking, rate limiting, tracing) come from
// [httpclient.Client]. Actions are posted exactly once; replaying a failed
// dispatch is the caller's decision.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-dispatch-service/internal/ports"
)

var _ ports.HealthChecker = (*Client)(nil)

const (
	dispatchPath = "/api/v1/dispatch/"
	batchPath    = "/api/v1/batch"
	actionsPath  = "/api/v1/actions"
)

// Client sends actions to a remote dispatch endpoint.
type Client struct {
	http   *httpclient.Client
	logger *slog.Logger
}

// New creates a Client that sends requests through the given
// [httpclient.Client], whose base URL points at the remote service root.
func New(client *httpclient.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{http: client, logger: logger}
}

// ItemResult is the outcome of one action of a remote batch. Exactly one of
// Result and Err is set.
type ItemResult struct {
	Index  int
	Type   string
	Result json.RawMessage
	Err    error
}

// BatchResult is the outcome of a remote batch.
type BatchResult struct {
	Policy     dispatch.FailurePolicy
	RolledBack bool
	Items      []ItemResult
}

type dispatchEnvelope struct {
	Type   string          `json:"type"`
	Result json.RawMessage `json:"result"`
}

type batchEnvelope struct {
	RolledBack bool `json:"rolled_back"`
	Items      []struct {
		Index  int                `json:"index"`
		Type   string             `json:"type"`
		Result json.RawMessage    `json:"result"`
		Error  *dto.ErrorResponse `json:"error"`
	} `json:"items"`
}

// Dispatch posts one action payload under actionType and returns the raw
// result document.
func (c *Client) Dispatch(ctx context.Context, creds session.Credentials, actionType string, payload any) (json.RawMessage, error) {
	if actionType == "" {
		return nil, dispatch.ErrNilAction
	}
	body, err := marshalPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", actionType, err)
	}

	var env dispatchEnvelope
	path := dispatchPath + url.PathEscape(actionType)
	if err := c.do(withCredentials(ctx, creds), http.MethodPost, path, body, &env); err != nil {
		return nil, err
	}
	return env.Result, nil
}

// Send posts a typed action under its own type token.
func (c *Client) Send(ctx context.Context, creds session.Credentials, action dispatch.Action) (json.RawMessage, error) {
	if action == nil {
		return nil, dispatch.ErrNilAction
	}
	return c.Dispatch(ctx, creds, action.ActionType(), action)
}

// Batch posts several actions as one batch. A rollback batch that failed
// returns a *dispatch.BatchItemError naming the failing action; a continue
// batch reports failures per item.
func (c *Client) Batch(ctx context.Context, creds session.Credentials, actions []dispatch.Action, policy dispatch.FailurePolicy) (*BatchResult, error) {
	if len(actions) == 0 {
		return nil, dispatch.ErrEmptyBatch
	}

	req := dto.BatchRequest{
		OnFailure: policy.String(),
		Actions:   make([]dto.BatchItemRequest, len(actions)),
	}
	for i, action := range actions {
		if action == nil {
			return nil, &dispatch.BatchItemError{Index: i, Err: dispatch.ErrNilAction}
		}
		payload, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("encoding batch item %d: %w", i, err)
		}
		req.Actions[i] = dto.BatchItemRequest{Type: action.ActionType(), Payload: payload}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding batch: %w", err)
	}

	var env batchEnvelope
	if err := c.do(withCredentials(ctx, creds), http.MethodPost, batchPath, body, &env); err != nil {
		return nil, err
	}

	result := &BatchResult{
		Policy:     policy,
		RolledBack: env.RolledBack,
		Items:      make([]ItemResult, len(env.Items)),
	}
	for i, item := range env.Items {
		result.Items[i] = ItemResult{Index: item.Index, Type: item.Type, Result: item.Result}
		if item.Error != nil {
			result.Items[i].Result = nil
			result.Items[i].Err = problemError(item.Error)
		}
	}
	return result, nil
}

// Actions lists the action types the remote service has registered.
func (c *Client) Actions(ctx context.Context) ([]dispatch.Descriptor, error) {
	var resp dto.ActionListResponse
	if err := c.do(ctx, http.MethodGet, actionsPath, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Actions, nil
}

// Name returns the health check name of the underlying HTTP client.
func (c *Client) Name() string {
	return c.http.Name()
}

// HealthCheck reports the remote endpoint's availability from the circuit
// breaker state.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.http.HealthCheck(ctx)
}

// Execute sends a typed action and decodes the result into R.
func Execute[A dispatch.Action, R any](ctx context.Context, c *Client, creds session.Credentials, a A) (R, error) {
	var zero R
	raw, err := c.Dispatch(ctx, creds, a.ActionType(), a)
	if err != nil {
		return zero, err
	}
	var out R
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decoding %s result: %w", a.ActionType(), err)
	}
	return out, nil
}

// do sends the request, checks for a 200 and decodes the response into out.
// The response body is always closed.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := c.http.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		// A final retryable status comes back together with its response;
		// the problem body is more useful than the retry error.
		if resp != nil {
			defer c.closeBody(ctx, resp)
			if resp.StatusCode != http.StatusOK {
				return TranslateHTTPError(resp)
			}
		}
		c.logger.ErrorContext(ctx, "remote dispatch failed",
			slog.String("operation", "RemoteDispatch"),
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer c.closeBody(ctx, resp)

	if resp.StatusCode != http.StatusOK {
		translated := TranslateHTTPError(resp)
		c.logger.WarnContext(ctx, "remote dispatch rejected",
			slog.String("operation", "RemoteDispatch"),
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.Any("error", translated),
		)
		return translated
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response from %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.WarnContext(ctx, "failed to close response body",
			slog.String("error", err.Error()),
		)
	}
}

func withCredentials(ctx context.Context, creds session.Credentials) context.Context {
	if creds.BearerToken != "" {
		ctx = httpclient.WithBearerToken(ctx, creds.BearerToken)
	}
	if creds.SessionID != "" {
		ctx = httpclient.WithSessionID(ctx, creds.SessionID)
	}
	return ctx
}

func marshalPayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return []byte("{}"), nil
	case json.RawMessage:
		return p, nil
	case []byte:
		return p, nil
	default:
		return json.Marshal(p)
	}
}
