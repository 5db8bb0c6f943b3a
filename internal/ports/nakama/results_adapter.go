package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gridduel/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// storageWriter is the slice of runtime.NakamaModule the results adapter needs.
type storageWriter interface {
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// NakamaResultsAdapter implements ports.ResultsPort on Nakama storage.
// One object per match, keyed by match id, owned by the system user.
type NakamaResultsAdapter struct {
	nk storageWriter
}

// NewNakamaResultsAdapter creates a new results adapter.
func NewNakamaResultsAdapter(nk storageWriter) *NakamaResultsAdapter {
	return &NakamaResultsAdapter{nk: nk}
}

type storedResult struct {
	MatchID  string            `json:"match_id"`
	Winner   string            `json:"winner"`
	Players  map[string]string `json:"players"`
	Board    [5][5]string      `json:"board"`
	Moves    int               `json:"moves"`
	Finished int64             `json:"finished_unix"`
}

// RecordResult writes the match outcome as a public-read storage object.
// A second write for the same match is a no-op.
func (a *NakamaResultsAdapter) RecordResult(ctx context.Context, result ports.MatchResult) error {
	if result.MatchID == "" {
		return fmt.Errorf("record result: empty match id")
	}
	value, err := json.Marshal(storedResult{
		MatchID:  result.MatchID,
		Winner:   result.Winner,
		Players:  result.Players,
		Board:    result.Board,
		Moves:    result.Moves,
		Finished: result.Finished.Unix(),
	})
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      ResultsCollection,
		Key:             result.MatchID,
		Value:           string(value),
		Version:         "*",
		PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return nil
		}
		return fmt.Errorf("record result %s: %w", result.MatchID, err)
	}
	return nil
}

var _ ports.ResultsPort = (*NakamaResultsAdapter)(nil)
