package app

import (
	"errors"
	"fmt"
	"time"

	"gridduel/internal/domain"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

var (
	ErrSeatTokenInvalid  = errors.New("invalid seat token")
	ErrSeatTokenMismatch = errors.New("seat token issued for another seat")
	ErrSeatTokenStale    = errors.New("seat token issued for another match")
)

// SeatClaims are the verified contents of a seat token.
type SeatClaims struct {
	Seat    domain.Owner
	MatchID string
	TokenID string
	Expires time.Time
}

// SeatTokens mints and verifies HS256 tokens binding a connection to a seat.
type SeatTokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSeatTokens returns a token service. An empty secret yields a nil
// service, which callers treat as "tokens not required".
func NewSeatTokens(secret, issuer string, ttl time.Duration) *SeatTokens {
	if secret == "" {
		return nil
	}
	return &SeatTokens{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue mints a token for seat in matchID.
func (s *SeatTokens) Issue(matchID string, seat domain.Owner) (string, error) {
	if s == nil {
		return "", fmt.Errorf("seat token service is nil")
	}
	if !seat.Valid() {
		return "", domain.ErrUnknownPlayer
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  string(seat),
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
		"jti":  uuid.NewString(),
		"seat": string(seat),
		"mid":  matchID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature, expiry and issuer, and that the token was
// issued for seat. A token minted without a match id is accepted for any
// match; otherwise its id must equal matchID.
func (s *SeatTokens) Verify(tokenString string, seat domain.Owner, matchID string) (SeatClaims, error) {
	if s == nil {
		return SeatClaims{}, fmt.Errorf("seat token service is nil")
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return SeatClaims{}, fmt.Errorf("%w: %v", ErrSeatTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return SeatClaims{}, ErrSeatTokenInvalid
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return SeatClaims{}, fmt.Errorf("%w: issuer", ErrSeatTokenInvalid)
	}

	got, _ := claims["seat"].(string)
	if domain.Owner(got) != seat {
		return SeatClaims{}, ErrSeatTokenMismatch
	}

	out := SeatClaims{Seat: seat}
	out.MatchID, _ = claims["mid"].(string)
	if out.MatchID != "" && out.MatchID != matchID {
		return SeatClaims{}, ErrSeatTokenStale
	}
	out.TokenID, _ = claims["jti"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		out.Expires = time.Unix(int64(exp), 0)
	}
	return out, nil
}
