package bot

import (
	"strings"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
)

const botIDPrefix = "bot:"

type BotIdentity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// NewIdentity returns a fresh bot identity. Bot ids never collide with
// Nakama user ids, which are bare UUIDs.
func NewIdentity() BotIdentity {
	words := strings.Fields(petname.Generate(2, " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return BotIdentity{
		UserID:      botIDPrefix + uuid.NewString(),
		DisplayName: strings.Join(words, " ") + " (bot)",
	}
}

// IsBot reports whether the given user ID belongs to a bot.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, botIDPrefix)
}
