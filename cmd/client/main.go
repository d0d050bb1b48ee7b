// Package main provides a small CLI that sends one action to a running
// dispatch service and prints the result.
//
//	dispatch-client -url http://localhost:8080 echo '{"message":"hi"}'
//	dispatch-client -token "$TOKEN" session.open '{"subject":"alice"}'
//	dispatch-client -list
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/clients/remote"
	"github.com/jsamuelsen11/go-dispatch-service/internal/app/dispatch"
	"github.com/jsamuelsen11/go-dispatch-service/internal/domain/session"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/config"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
)

func main() {
	var (
		baseURL   string
		token     string
		sessionID string
		timeout   time.Duration
		list      bool
		verbose   bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "dispatch service base URL")
	flag.StringVar(&token, "token", os.Getenv("DISPATCH_TOKEN"), "bearer token (default $DISPATCH_TOKEN)")
	flag.StringVar(&sessionID, "session", os.Getenv("DISPATCH_SESSION"), "session ID (default $DISPATCH_SESSION)")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	flag.BoolVar(&list, "list", false, "list the registered actions")
	flag.BoolVar(&verbose, "v", false, "log client diagnostics to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <action-type> [payload|-]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	level := "error"
	if verbose {
		level = "debug"
	}
	logger := logging.New(level, "text", os.Stderr)

	cfg := &config.ClientConfig{
		BaseURL: baseURL,
		Timeout: timeout,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      2.0,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 1,
		},
	}
	client := remote.New(httpclient.New(cfg, "remote-dispatch", nil, logger), logger)

	if err := run(ctx, client, session.Credentials{BearerToken: token, SessionID: sessionID}, list, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, client *remote.Client, creds session.Credentials, list bool, args []string) error {
	if list {
		descriptors, err := client.Actions(ctx)
		if err != nil {
			return err
		}
		for _, d := range descriptors {
			secure := ""
			if d.Secure {
				secure = " (secured)"
			}
			fmt.Printf("%-20s %s%s\n", d.Type, d.Description, secure)
		}
		return nil
	}

	if len(args) == 0 || len(args) > 2 {
		flag.Usage()
		return errors.New("expected an action type and an optional payload")
	}

	payload, err := readPayload(args[1:])
	if err != nil {
		return err
	}

	result, err := client.Dispatch(ctx, creds, args[0], json.RawMessage(payload))
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, result, "", "  "); err != nil {
		return fmt.Errorf("formatting result: %w", err)
	}
	fmt.Println(out.String())
	return nil
}

func readPayload(args []string) ([]byte, error) {
	switch {
	case len(args) == 0:
		return []byte("{}"), nil
	case args[0] == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
		return b, nil
	default:
		return []byte(args[0]), nil
	}
}

// exitCode distinguishes the dispatch failure kinds for scripts.
func exitCode(err error) int {
	var (
		unregistered *dispatch.UnregisteredActionError
		rejected     *dispatch.SessionValidationError
		failed       *dispatch.ActionExecutionError
	)
	switch {
	case errors.As(err, &unregistered):
		return 3
	case errors.As(err, &rejected):
		return 4
	case errors.As(err, &failed):
		return 5
	default:
		return 1
	}
}
