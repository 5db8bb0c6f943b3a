package app

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gridduel/internal/domain"

	"github.com/form3tech-oss/jwt-go"
)

func TestSeatTokensIssueClaims(t *testing.T) {
	secret := "test-secret"
	svc := NewSeatTokens(secret, "gridduel", time.Hour)

	tokenString, err := svc.Issue("match-1", domain.OwnerB)
	if err != nil {
		t.Fatalf("issue token error: %v", err)
	}

	claims := parseSeatClaims(t, tokenString, secret)
	if got := stringClaim(t, claims, "seat"); got != "B" {
		t.Fatalf("seat = %s, want B", got)
	}
	if got := stringClaim(t, claims, "mid"); got != "match-1" {
		t.Fatalf("mid = %s, want match-1", got)
	}
	if got := stringClaim(t, claims, "iss"); got != "gridduel" {
		t.Fatalf("iss = %s, want gridduel", got)
	}
	if got := stringClaim(t, claims, "jti"); got == "" {
		t.Fatal("jti claim is empty")
	}
}

func TestSeatTokensVerify(t *testing.T) {
	svc := NewSeatTokens("test-secret", "gridduel", time.Hour)
	token, err := svc.Issue("match-1", domain.OwnerA)
	if err != nil {
		t.Fatalf("issue token error: %v", err)
	}

	claims, err := svc.Verify(token, domain.OwnerA, "match-1")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if claims.Seat != domain.OwnerA || claims.MatchID != "match-1" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Expires.Before(time.Now()) {
		t.Fatalf("expiry %v is in the past", claims.Expires)
	}

	if _, err := svc.Verify(token, domain.OwnerB, "match-1"); !errors.Is(err, ErrSeatTokenMismatch) {
		t.Fatalf("verify for other seat error = %v, want %v", err, ErrSeatTokenMismatch)
	}
}

func TestSeatTokensVerifyMatchID(t *testing.T) {
	svc := NewSeatTokens("test-secret", "gridduel", time.Hour)
	bound, err := svc.Issue("match-1", domain.OwnerA)
	if err != nil {
		t.Fatalf("issue token error: %v", err)
	}
	if _, err := svc.Verify(bound, domain.OwnerA, "match-2"); !errors.Is(err, ErrSeatTokenStale) {
		t.Fatalf("verify for later match error = %v, want %v", err, ErrSeatTokenStale)
	}

	unbound, err := svc.Issue("", domain.OwnerA)
	if err != nil {
		t.Fatalf("issue token error: %v", err)
	}
	for _, matchID := range []string{"match-1", "match-2"} {
		if _, err := svc.Verify(unbound, domain.OwnerA, matchID); err != nil {
			t.Fatalf("unbound token rejected for %s: %v", matchID, err)
		}
	}
}

func TestSeatTokensVerifyRejects(t *testing.T) {
	svc := NewSeatTokens("test-secret", "gridduel", time.Hour)

	other := NewSeatTokens("other-secret", "gridduel", time.Hour)
	forged, err := other.Issue("match-1", domain.OwnerA)
	if err != nil {
		t.Fatalf("issue token error: %v", err)
	}

	expiredSvc := NewSeatTokens("test-secret", "gridduel", time.Hour)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.Issue("match-1", domain.OwnerA)
	if err != nil {
		t.Fatalf("issue token error: %v", err)
	}

	wrongIssuer, err := NewSeatTokens("test-secret", "someone-else", time.Hour).Issue("match-1", domain.OwnerA)
	if err != nil {
		t.Fatalf("issue token error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: forged},
		{name: "expired", token: expired},
		{name: "wrong issuer", token: wrongIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token, domain.OwnerA, "match-1"); !errors.Is(err, ErrSeatTokenInvalid) {
				t.Fatalf("Verify() error = %v, want %v", err, ErrSeatTokenInvalid)
			}
		})
	}
}

func TestSeatTokensIssueRejectsUnknownSeat(t *testing.T) {
	svc := NewSeatTokens("secret", "gridduel", time.Hour)
	if _, err := svc.Issue("match-1", domain.Owner("C")); err == nil {
		t.Fatal("expected error for unknown seat")
	}
}

func TestNewSeatTokensWithoutSecret(t *testing.T) {
	if svc := NewSeatTokens("", "gridduel", time.Hour); svc != nil {
		t.Fatal("expected nil service without a secret")
	}
}

func parseSeatClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func stringClaim(t *testing.T, claims jwt.MapClaims, name string) string {
	t.Helper()
	value, ok := claims[name]
	if !ok {
		t.Fatalf("missing %s claim", name)
	}
	str, ok := value.(string)
	if !ok {
		t.Fatalf("%s claim is not a string", name)
	}
	return str
}
