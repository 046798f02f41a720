// Package hmacverifier provides a reference ash.Verifier using
// HMAC-SHA256 over the canonical request identity and scoped payload
// content. It exists for integrations that share a symmetric key between
// proof issuer and verifier, and for exercising the verification core in
// tests; the ASH protocol itself does not mandate this construction.
package hmacverifier

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vitalvas/ash"
	"github.com/vitalvas/ash/canonical"
)

const minKeyBytes = 32

// ErrInvalidKey is returned when the shared key is too short.
var ErrInvalidKey = errors.New("hmacverifier: hmac key must be at least 32 bytes")

// Config configures a Verifier.
type Config struct {
	// Key is the shared HMAC key. Required, at least 32 bytes.
	Key []byte

	// MaxAge, when non-zero, rejects proofs whose timestamp is older than
	// this (or in the future). Zero disables the window check.
	MaxAge time.Duration
}

// Verifier validates ASH proofs as HMAC-SHA256 tags over the canonical
// proof message. It implements ash.Verifier.
type Verifier struct {
	key    []byte
	maxAge time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New builds a Verifier from cfg.
func New(cfg Config) (*Verifier, error) {
	if len(cfg.Key) < minKeyBytes {
		return nil, ErrInvalidKey
	}

	key := make([]byte, len(cfg.Key))
	copy(key, cfg.Key)

	return &Verifier{key: key, maxAge: cfg.MaxAge, now: time.Now}, nil
}

// VerifyProof checks req.Proof against the canonical proof message.
func (v *Verifier) VerifyProof(req ash.ProofRequest) ash.ProofResult {
	proof, err := base64.StdEncoding.DecodeString(req.Proof)
	if err != nil {
		return failure(ash.FailureMalformed, "proof token is not valid base64")
	}

	if req.ScopeHash != "" && req.ScopeHash != ScopeHash(req.Scope) {
		return failure(ash.FailureIntegrity, "declared scope hash does not match the effective scope")
	}

	if v.maxAge > 0 {
		if res, ok := v.checkWindow(req.Timestamp); !ok {
			return res
		}
	}

	message, err := proofMessage(req)
	if err != nil {
		return failure(ash.FailureMalformed, err.Error())
	}

	expected := computeHMAC(v.key, message)

	if !hmac.Equal(expected, proof) {
		return failure(ash.FailureIntegrity, "proof does not match canonical request content")
	}

	return ash.ProofResult{
		Valid: true,
		Metadata: map[string]string{
			"alg": "hmac-sha256",
		},
	}
}

// Proof computes the proof token for req, for issuers sharing the key.
func (v *Verifier) Proof(req ash.ProofRequest) (string, error) {
	message, err := proofMessage(req)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(computeHMAC(v.key, message)), nil
}

func (v *Verifier) checkWindow(timestamp string) (ash.ProofResult, bool) {
	if timestamp == "" {
		return failure(ash.FailureExpired, "timestamp is required when a replay window is enforced"), false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return failure(ash.FailureMalformed, "timestamp is not a unix epoch integer"), false
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age < 0 || age > v.maxAge {
		return failure(ash.FailureExpired, "proof timestamp is outside the accepted window"), false
	}

	return ash.ProofResult{}, true
}

// proofMessage builds the byte string the HMAC covers: binding, timestamp,
// scope hash, chain hash, and payload digest, newline-joined. Every part
// is either canonical or a hash, so the message itself is canonical.
func proofMessage(req ash.ProofRequest) ([]byte, error) {
	digest, err := PayloadDigest(req.Payload, req.ContentType, req.Scope)
	if err != nil {
		return nil, err
	}

	parts := []string{
		req.Binding,
		req.Timestamp,
		ScopeHash(req.Scope),
		req.ChainHash,
		digest,
	}

	return []byte(strings.Join(parts, "\n")), nil
}

// ScopeHash hashes an ordered scope field list: the hex SHA-256 of its
// canonical list encoding. The empty scope hashes the empty list "[]".
func ScopeHash(scope []string) string {
	elems := make([]canonical.Value, len(scope))
	for i, field := range scope {
		elems[i] = canonical.String(field)
	}

	encoded, err := canonical.Encode(canonical.List(elems...))
	if err != nil {
		// Scope fields come from header text already validated upstream;
		// list encoding of strings cannot otherwise fail.
		encoded = "[]"
	}

	sum := sha256.Sum256([]byte(encoded))

	return hex.EncodeToString(sum[:])
}

// PayloadDigest hashes the protected payload content. With an empty scope
// the raw payload bytes are hashed. With a non-empty scope the payload
// must be JSON; the scoped fields are extracted in scope order (a missing
// field contributes null) and hashed in canonical form, so two payloads
// that agree on the protected fields digest identically no matter how the
// rest of the document is encoded.
func PayloadDigest(payload []byte, contentType string, scope []string) (string, error) {
	if len(scope) == 0 {
		sum := sha256.Sum256(payload)
		return hex.EncodeToString(sum[:]), nil
	}

	if !isJSONContentType(contentType) {
		return "", fmt.Errorf("hmacverifier: scoped verification requires a json payload, got %q", contentType)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("hmacverifier: scoped payload is not a json object: %w", err)
	}

	// Fields are hashed in scope order, interleaved with their names, so
	// the digest depends on exactly the order the orchestrator resolved.
	elems := make([]canonical.Value, 0, len(scope)*2)

	for _, field := range scope {
		elems = append(elems, canonical.String(field))

		value, ok := doc[field]
		if !ok {
			elems = append(elems, canonical.Null())
			continue
		}

		cv, err := canonical.FromAny(value)
		if err != nil {
			return "", err
		}

		elems = append(elems, cv)
	}

	encoded, err := canonical.Encode(canonical.List(elems...))
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256([]byte(encoded))

	return hex.EncodeToString(sum[:]), nil
}

func failure(code ash.FailureCode, message string) ash.ProofResult {
	return ash.ProofResult{Valid: false, Code: code, Message: message}
}

func computeHMAC(key, message []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(message)

	return h.Sum(nil)
}

func isJSONContentType(contentType string) bool {
	mediaType := contentType

	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}

	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
