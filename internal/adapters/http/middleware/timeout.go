package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/jsamuelsen11/go-dispatch-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
)

// Timeout returns middleware that bounds each request by timeout. The handler
// sees the deadline on its context, which the dispatcher passes on to
// validators and handlers. If the handler has not finished in time, the
// client gets a 504 problem and whatever the handler writes afterwards is
// discarded.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	detail := fmt.Sprintf("request did not complete within %s", timeout)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			bw := &bufferedWriter{}
			done := make(chan struct{})

			go func() {
				defer close(done)
				next.ServeHTTP(bw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				bw.mu.Lock()
				defer bw.mu.Unlock()
				bw.copyTo(w)
			case <-ctx.Done():
				bw.mu.Lock()
				defer bw.mu.Unlock()
				bw.abandoned = true
				logging.FromContext(r.Context()).WarnContext(r.Context(), "request deadline exceeded",
					slog.String("path", r.URL.Path),
					slog.Duration("timeout", timeout),
				)
				dto.WriteStatusProblem(w, r, http.StatusGatewayTimeout, detail)
			}
		})
	}
}

// bufferedWriter holds the handler's response until Timeout decides whether
// it is sent. Once abandoned, writes are accepted and dropped.
type bufferedWriter struct {
	mu          sync.Mutex
	header      http.Header
	body        []byte
	statusCode  int
	wroteHeader bool
	abandoned   bool
}

func (bw *bufferedWriter) Header() http.Header {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.header == nil {
		bw.header = make(http.Header)
	}
	return bw.header
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if !bw.wroteHeader {
		bw.statusCode = http.StatusOK
		bw.wroteHeader = true
	}
	if !bw.abandoned {
		bw.body = append(bw.body, b...)
	}
	return len(b), nil
}

func (bw *bufferedWriter) WriteHeader(code int) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.wroteHeader {
		return
	}
	bw.statusCode = code
	bw.wroteHeader = true
}

// copyTo sends the buffered response. Callers hold bw.mu.
func (bw *bufferedWriter) copyTo(w http.ResponseWriter) {
	if bw.header != nil {
		maps.Copy(w.Header(), bw.header)
	}
	if bw.wroteHeader {
		w.WriteHeader(bw.statusCode)
	}
	if len(bw.body) > 0 {
		_, _ = w.Write(bw.body)
	}
}
