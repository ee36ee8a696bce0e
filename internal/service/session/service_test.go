package session

import (
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	svc := New()
	token := svc.Issue()
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !svc.Validate(token) {
		t.Fatal("freshly issued token must validate")
	}
	if svc.Validate("unknown-token") {
		t.Fatal("unknown token must not validate")
	}
}

func TestIssueTokensAreUnique(t *testing.T) {
	svc := New()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := svc.Issue()
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}

func TestValidatePrunesExpiredToken(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := New()
	svc.now = func() time.Time { return current }

	token := svc.Issue()
	if !svc.Validate(token) {
		t.Fatal("token must be valid before expiry")
	}

	current = current.Add(31 * 24 * time.Hour)
	if svc.Validate(token) {
		t.Fatal("expired token must not validate")
	}

	// Pruned on first failed check, stays invalid.
	if svc.Validate(token) {
		t.Fatal("pruned token must stay invalid")
	}
}
