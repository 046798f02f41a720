package ash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/ash/policy"
)

// stubVerifier returns a fixed result and records the last ProofRequest.
type stubVerifier struct {
	result ProofResult
	last   ProofRequest
}

func (s *stubVerifier) VerifyProof(req ProofRequest) ProofResult {
	s.last = req
	return s.result
}

func acceptAll() *stubVerifier {
	return &stubVerifier{result: ProofResult{Valid: true}}
}

func rejectWith(code FailureCode) *stubVerifier {
	return &stubVerifier{result: ProofResult{Valid: false, Code: code}}
}

func baseRequest() Request {
	return Request{
		ContextID: "ctx-1",
		Proof:     "proof-token",
		Method:    "POST",
		Path:      "/api/users",
	}
}

func TestNewOrchestrator(t *testing.T) {
	t.Run("nil verifier returns error", func(t *testing.T) {
		_, err := NewOrchestrator(nil, policy.New())
		assert.ErrorIs(t, err, ErrNoVerifier)
	})

	t.Run("nil registry is allowed", func(t *testing.T) {
		orch, err := NewOrchestrator(acceptAll(), nil)
		require.NoError(t, err)

		_, err = orch.Verify(baseRequest())
		assert.NoError(t, err)
	})
}

func TestVerifyRequiredHeaders(t *testing.T) {
	orch, err := NewOrchestrator(acceptAll(), nil)
	require.NoError(t, err)

	t.Run("missing context id", func(t *testing.T) {
		req := baseRequest()
		req.ContextID = ""

		_, err := orch.Verify(req)
		require.Error(t, err)
		assert.Equal(t, CodeMissingContextID, RejectionError(err).Code)
	})

	t.Run("missing proof", func(t *testing.T) {
		req := baseRequest()
		req.Proof = ""

		_, err := orch.Verify(req)
		require.Error(t, err)
		assert.Equal(t, CodeMissingProof, RejectionError(err).Code)
	})
}

func TestVerifyBinding(t *testing.T) {
	verifier := acceptAll()
	orch, err := NewOrchestrator(verifier, nil)
	require.NoError(t, err)

	t.Run("binding is canonical", func(t *testing.T) {
		req := baseRequest()
		req.Method = "post"
		req.Path = "//api//users/"
		req.Query = "b=2&a=1"

		result, err := orch.Verify(req)
		require.NoError(t, err)

		assert.Equal(t, "POST|/api/users|a=1&b=2", result.Binding)
		assert.Equal(t, result.Binding, verifier.last.Binding)
	})

	t.Run("uncanonicalizable query is a rejection not a raw error", func(t *testing.T) {
		req := baseRequest()
		req.Query = "a=%zz"

		_, err := orch.Verify(req)
		require.Error(t, err)
		assert.Equal(t, CodeVerificationFailed, RejectionError(err).Code)
	})
}

func TestVerifyScopePolicy(t *testing.T) {
	newOrch := func(t *testing.T, verifier Verifier) *Orchestrator {
		t.Helper()

		reg := policy.New()
		reg.Register("POST|/api/users|", []string{"email", "username"})

		orch, err := NewOrchestrator(verifier, reg)
		require.NoError(t, err)

		return orch
	}

	t.Run("policy with no declared scope", func(t *testing.T) {
		orch := newOrch(t, acceptAll())

		_, err := orch.Verify(baseRequest())
		require.Error(t, err)

		rejection := RejectionError(err)
		assert.Equal(t, CodeScopePolicyRequired, rejection.Code)
		assert.Equal(t, []string{"email", "username"}, rejection.RequiredScope)
	})

	t.Run("declared scope matching in any order is accepted", func(t *testing.T) {
		verifier := acceptAll()
		orch := newOrch(t, verifier)

		req := baseRequest()
		req.ScopeHeader = "username, email"

		result, err := orch.Verify(req)
		require.NoError(t, err)

		// Effective scope follows the server policy's order.
		assert.Equal(t, []string{"email", "username"}, result.EffectiveScope)
		assert.Equal(t, []string{"email", "username"}, result.PolicyScope)
		assert.Equal(t, []string{"email", "username"}, verifier.last.Scope)
	})

	t.Run("duplicate declared fields still match as a set", func(t *testing.T) {
		orch := newOrch(t, acceptAll())

		req := baseRequest()
		req.ScopeHeader = "email,email,username"

		_, err := orch.Verify(req)
		assert.NoError(t, err)
	})

	t.Run("scope set mismatch carries diagnostics", func(t *testing.T) {
		orch := newOrch(t, acceptAll())

		req := baseRequest()
		req.ScopeHeader = "email,role"

		_, err := orch.Verify(req)
		require.Error(t, err)

		rejection := RejectionError(err)
		assert.Equal(t, CodeScopePolicyViolation, rejection.Code)
		assert.Equal(t, []string{"email", "username"}, rejection.Expected)
		assert.Equal(t, []string{"email", "role"}, rejection.Received)
	})

	t.Run("no policy uses the declared scope verbatim", func(t *testing.T) {
		verifier := acceptAll()
		orch, err := NewOrchestrator(verifier, policy.New())
		require.NoError(t, err)

		req := baseRequest()
		req.ScopeHeader = "b, a, b"

		result, err := orch.Verify(req)
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "a", "b"}, result.EffectiveScope)
		assert.Nil(t, result.PolicyScope)
	})

	t.Run("no policy and no scope protects the whole payload", func(t *testing.T) {
		verifier := acceptAll()
		orch, err := NewOrchestrator(verifier, policy.New())
		require.NoError(t, err)

		_, err = orch.Verify(baseRequest())
		require.NoError(t, err)
		assert.Empty(t, verifier.last.Scope)
	})
}

func TestVerifyFailureRemapping(t *testing.T) {
	newOrch := func(t *testing.T, verifier Verifier) *Orchestrator {
		t.Helper()

		orch, err := NewOrchestrator(verifier, nil)
		require.NoError(t, err)

		return orch
	}

	t.Run("integrity failure with scope and scope hash maps to scope mismatch", func(t *testing.T) {
		orch := newOrch(t, rejectWith(FailureIntegrity))

		req := baseRequest()
		req.ScopeHeader = "email"
		req.ScopeHash = "abc123"

		_, err := orch.Verify(req)
		require.Error(t, err)
		assert.Equal(t, CodeScopeMismatch, RejectionError(err).Code)
	})

	t.Run("integrity failure with chain hash maps to chain broken", func(t *testing.T) {
		orch := newOrch(t, rejectWith(FailureIntegrity))

		req := baseRequest()
		req.ChainHash = "def456"

		_, err := orch.Verify(req)
		require.Error(t, err)
		assert.Equal(t, CodeChainBroken, RejectionError(err).Code)
	})

	t.Run("scope attribution wins when both apply", func(t *testing.T) {
		orch := newOrch(t, rejectWith(FailureIntegrity))

		req := baseRequest()
		req.ScopeHeader = "email"
		req.ScopeHash = "abc123"
		req.ChainHash = "def456"

		_, err := orch.Verify(req)
		require.Error(t, err)
		assert.Equal(t, CodeScopeMismatch, RejectionError(err).Code)
	})

	t.Run("integrity failure with neither stays generic", func(t *testing.T) {
		orch := newOrch(t, rejectWith(FailureIntegrity))

		_, err := orch.Verify(baseRequest())
		require.Error(t, err)
		assert.Equal(t, CodeVerificationFailed, RejectionError(err).Code)
	})

	t.Run("non-integrity failures never remap", func(t *testing.T) {
		for _, code := range []FailureCode{FailureExpired, FailureReplay, FailureMalformed, FailureInternal} {
			orch := newOrch(t, rejectWith(code))

			req := baseRequest()
			req.ScopeHeader = "email"
			req.ScopeHash = "abc123"
			req.ChainHash = "def456"

			_, err := orch.Verify(req)
			require.Error(t, err)
			assert.Equal(t, CodeVerificationFailed, RejectionError(err).Code)
		}
	})

	t.Run("verifier message is surfaced", func(t *testing.T) {
		verifier := &stubVerifier{result: ProofResult{Valid: false, Code: FailureExpired, Message: "proof is 10m old"}}
		orch := newOrch(t, verifier)

		_, err := orch.Verify(baseRequest())
		require.Error(t, err)
		assert.Equal(t, "proof is 10m old", RejectionError(err).Message)
	})
}

func TestVerifySuccess(t *testing.T) {
	verifier := &stubVerifier{result: ProofResult{
		Valid:    true,
		Metadata: map[string]string{"alg": "hmac-sha256"},
	}}

	orch, err := NewOrchestrator(verifier, nil)
	require.NoError(t, err)

	req := baseRequest()
	req.ChainHash = "chain-1"
	req.Payload = []byte(`{"email":"a@example.com"}`)
	req.ContentType = "application/json"

	result, err := orch.Verify(req)
	require.NoError(t, err)

	assert.Equal(t, "chain-1", result.ChainHash)
	assert.Equal(t, map[string]string{"alg": "hmac-sha256"}, result.Metadata)
	assert.Equal(t, req.Payload, verifier.last.Payload)
	assert.Equal(t, "application/json", verifier.last.ContentType)
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{"empty", "", nil},
		{"single", "email", []string{"email"}},
		{"trimmed", " email , username ", []string{"email", "username"}},
		{"empty segments skipped", "email,,username,", []string{"email", "username"}},
		{"duplicates pass through", "a,a,b", []string{"a", "a", "b"}},
		{"only separators", " , ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseScope(tt.header))
		})
	}
}
