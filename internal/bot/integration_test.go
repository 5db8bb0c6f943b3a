package bot

import (
	"errors"
	"math/rand"
	"testing"

	"gridduel/internal/app"
	"gridduel/internal/domain"
)

func TestAgentsDriveMatchToGameOver(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := app.NewMatch(app.NewService(domain.Options{}))

	agents := map[domain.Owner]*Agent{}
	for _, owner := range domain.Owners {
		agent, err := NewAgent(BotLevelMedium, rng)
		if err != nil {
			t.Fatalf("NewAgent: %v", err)
		}
		agents[owner] = agent
		if _, err := m.Deploy(owner, agent.DeployTags()); err != nil {
			t.Fatalf("deploy %s: %v", owner, err)
		}
	}

	var last []app.Event
	for ply := 0; ply < 400 && !m.IsOver(); ply++ {
		owner := m.Turn()
		var (
			move Move
			err  error
		)
		m.View(func(g *domain.Game) { move, err = agents[owner].Play(g, owner) })
		if errors.Is(err, ErrNoLegalMove) {
			t.Skipf("position locked at ply %d", ply)
		}
		if err != nil {
			t.Fatalf("ply %d: %v", ply, err)
		}
		last, err = m.Move(owner, string(move.Piece), string(move.Direction))
		if err != nil {
			t.Fatalf("ply %d: move %+v rejected: %v", ply, move, err)
		}
	}

	if !m.IsOver() {
		t.Skip("no decision within ply limit")
	}
	if len(last) != 2 || last[1].Kind != app.EventGameOver {
		t.Fatalf("final events = %+v, want game over", last)
	}
	if got := last[1].Payload.(app.GameOverPayload).Winner; got != m.Winner() {
		t.Fatalf("winner = %s, match winner = %s", got, m.Winner())
	}
}
