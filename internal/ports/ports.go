// Package ports declares the outbound dependencies of the duel services.
package ports

import (
	"context"
	"time"
)

// AccountPort renames player accounts.
type AccountPort interface {
	// UpdateProfile sets the display name of userID. An empty username
	// leaves the login name unchanged.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}

// MatchResult summarizes a finished duel.
type MatchResult struct {
	MatchID  string
	Winner   string
	Players  map[string]string // seat -> user id
	Board    [5][5]string
	Moves    int
	Finished time.Time
}

// ResultsPort persists finished duels.
type ResultsPort interface {
	// RecordResult stores the outcome of one match.
	RecordResult(ctx context.Context, result MatchResult) error
}
