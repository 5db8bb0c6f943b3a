// Command nakama builds the grid duel runtime plugin (go build -buildmode=plugin).
package main

import (
	"context"
	"database/sql"

	"gridduel/internal/ports/nakama"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule is the symbol Nakama looks up when loading the plugin.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	return nakama.InitModule(ctx, logger, db, nk, initializer)
}

// main is required for non-plugin builds (e.g. go build ./...); it is unused when loaded as a plugin.
func main() {}
