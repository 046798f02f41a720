package ashhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"

	"github.com/vitalvas/ash"
)

// ErrNoOrchestrator is returned when MiddlewareConfig has no Orchestrator.
var ErrNoOrchestrator = errors.New("ashhttp: orchestrator must not be nil")

// DefaultMaxBodyBytes caps how much request body the middleware reads for
// verification when MiddlewareConfig.MaxBodyBytes is zero.
const DefaultMaxBodyBytes int64 = 10 << 20

type resultKey struct{}

// ResultFromContext returns the verification result attached to the
// request context by the middleware, or nil for unverified requests.
func ResultFromContext(ctx context.Context) *ash.Result {
	if result, ok := ctx.Value(resultKey{}).(*ash.Result); ok {
		return result
	}

	return nil
}

// MiddlewareConfig configures the ASH verification middleware.
type MiddlewareConfig struct {
	// Orchestrator makes the per-request decision. Required.
	Orchestrator *ash.Orchestrator

	// Logger receives one entry per rejection. Defaults to a no-op logger.
	Logger *zap.Logger

	// RequestIDFunc generates the correlation ID attached to rejection
	// bodies and log entries. Defaults to a random UUID per rejection.
	RequestIDFunc func(r *http.Request) string

	// OnReject overrides the rejection response. When nil, a 403 with the
	// protocol JSON body is written.
	OnReject func(w http.ResponseWriter, r *http.Request, requestID string, rejection *ash.Error)

	// MaxBodyBytes caps the body bytes read for verification. Zero means
	// DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Middleware returns a net/http middleware that verifies the ASH headers
// on every request. Accepted requests continue with the *ash.Result in
// their context; rejected requests get a 403 response with the protocol
// error body and never reach the next handler.
func Middleware(cfg MiddlewareConfig) (func(http.Handler) http.Handler, error) {
	if cfg.Orchestrator == nil {
		return nil, ErrNoOrchestrator
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	requestID := cfg.RequestIDFunc
	if requestID == nil {
		requestID = func(_ *http.Request) string { return uuid.NewString() }
	}

	onReject := cfg.OnReject
	if onReject == nil {
		onReject = writeRejection
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	orch := cfg.Orchestrator

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(rejection *ash.Error) {
				id := requestID(r)

				logger.Warn("ash verification rejected",
					zap.String("request_id", id),
					zap.String("code", string(rejection.Code)),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)

				onReject(w, r, id, rejection)
			}

			contextID := r.Header.Get(HeaderContextID)
			proof := r.Header.Get(HeaderProof)

			// HTTP/2 intermediaries can forward header octets net/http
			// would not itself parse; these values feed cryptographic
			// checks and must be clean.
			if !httpguts.ValidHeaderFieldValue(contextID) || !httpguts.ValidHeaderFieldValue(proof) {
				reject(&ash.Error{
					Code:    ash.CodeVerificationFailed,
					Message: "proof headers contain invalid characters",
				})

				return
			}

			body, err := readAndRestoreBody(r, maxBody)
			if err != nil {
				reject(&ash.Error{
					Code:    ash.CodeVerificationFailed,
					Message: "request body could not be read",
				})

				return
			}

			result, err := orch.Verify(ash.Request{
				ContextID:   contextID,
				Proof:       proof,
				Method:      r.Method,
				Path:        r.URL.Path,
				Query:       r.URL.RawQuery,
				ScopeHeader: r.Header.Get(HeaderScope),
				ScopeHash:   r.Header.Get(HeaderScopeHash),
				ChainHash:   r.Header.Get(HeaderChainHash),
				Timestamp:   r.Header.Get(HeaderTimestamp),
				Payload:     body,
				ContentType: r.Header.Get("Content-Type"),
			})
			if err != nil {
				reject(ash.RejectionError(err))
				return
			}

			ctx := context.WithValue(r.Context(), resultKey{}, result)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

// rejectionBody is the wire shape of a 403 response.
type rejectionBody struct {
	Error         string   `json:"error"`
	Message       string   `json:"message"`
	RequiredScope []string `json:"requiredScope,omitempty"`
	Expected      []string `json:"expected,omitempty"`
	Received      []string `json:"received,omitempty"`
	RequestID     string   `json:"requestId,omitempty"`
}

func writeRejection(w http.ResponseWriter, _ *http.Request, requestID string, rejection *ash.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)

	_ = json.NewEncoder(w).Encode(rejectionBody{
		Error:         string(rejection.Code),
		Message:       rejection.Message,
		RequiredScope: rejection.RequiredScope,
		Expected:      rejection.Expected,
		Received:      rejection.Received,
		RequestID:     requestID,
	})
}

// readAndRestoreBody drains up to limit bytes of the request body and
// replaces it so downstream handlers can read it again.
func readAndRestoreBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		return nil, err
	}

	if err := r.Body.Close(); err != nil {
		return nil, err
	}

	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}
