package auth

import (
	"strings"
	"testing"
	"time"
)

var secret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, expiresAt, err := GenerateToken("match-1", "player-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Error("expiry should be in the future")
	}

	claims, err := VerifyToken(token, secret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.MatchID != "match-1" || claims.PlayerID != "player-1" {
		t.Errorf("got claims %+v", claims)
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	token, _, err := GenerateToken("match-1", "player-1", secret, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := strings.SplitN(token, ".", 2)
	forged := parts[0] + "x." + parts[1]
	if _, err := VerifyToken(forged, secret); err == nil {
		t.Error("tampered payload should be rejected")
	}

	if _, err := VerifyToken(token, []byte("other-secret")); err == nil {
		t.Error("wrong secret should be rejected")
	}

	if _, err := VerifyToken("not-a-token", secret); err == nil {
		t.Error("malformed token should be rejected")
	}
}

func TestTokenExpiry(t *testing.T) {
	token, _, err := GenerateToken("match-1", "player-1", secret, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := VerifyToken(token, secret); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestTokenRequiresSecret(t *testing.T) {
	if _, _, err := GenerateToken("m", "p", nil, time.Hour); err == nil {
		t.Error("empty secret should be rejected on generate")
	}
	if _, err := VerifyToken("a.b", nil); err == nil {
		t.Error("empty secret should be rejected on verify")
	}
}
