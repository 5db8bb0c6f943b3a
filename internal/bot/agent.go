package bot

import (
	"gridduel/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID    string
	Name  string
	Brain Brain
}

// DeployTags returns the agent's deployment as wire tags.
func (a *Agent) DeployTags() []string {
	layout := a.Brain.Deployment()
	tags := make([]string, len(layout))
	for i, p := range layout {
		tags[i] = string(p)
	}
	return tags
}

// Play asks the agent to calculate its move based on the current game state.
func (a *Agent) Play(game *domain.Game, owner domain.Owner) (Move, error) {
	if game.Phase() != domain.PhaseInProgress || game.Turn() != owner {
		return Move{}, ErrNotBotTurn
	}
	return a.Brain.ChooseMove(game, owner)
}
