package app

import (
	"errors"
	"sync"
	"testing"

	"gridduel/internal/domain"
)

var (
	deployA = []string{"H1", "P", "P", "P", "H2"}
	deployB = []string{"H2", "P", "P", "P", "H1"}
)

func TestDeployEmitsStateUpdate(t *testing.T) {
	svc := NewService(domain.Options{})
	game := svc.NewGame()

	evs, err := svc.Deploy(game, domain.OwnerA, deployA)
	if err != nil {
		t.Fatalf("deploy error: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventStateUpdate {
		t.Fatalf("events = %+v, want one state update", evs)
	}
	payload := evs[0].Payload.(StateUpdatePayload)
	if payload.Board[0][0] != "A-H1" {
		t.Fatalf("board (0,0) = %q, want A-H1", payload.Board[0][0])
	}
	if payload.Phase != domain.PhaseAwaitingDeployment {
		t.Fatalf("phase = %s, want awaiting deployment", payload.Phase)
	}
	if payload.Actor != domain.OwnerA {
		t.Fatalf("actor = %s, want A", payload.Actor)
	}
}

func TestDeployRejectsBadComposition(t *testing.T) {
	svc := NewService(domain.Options{})
	game := svc.NewGame()

	evs, err := svc.Deploy(game, domain.OwnerA, []string{"P", "P", "P", "P", "H1"})
	if !errors.Is(err, domain.ErrInvalidComposition) {
		t.Fatalf("error = %v, want %v", err, domain.ErrInvalidComposition)
	}
	if evs != nil {
		t.Fatalf("events on failure = %+v", evs)
	}
}

func TestMoveEmitsStateUpdate(t *testing.T) {
	svc := NewService(domain.Options{})
	game := svc.NewGame()
	mustDeploy(t, svc, game)

	evs, err := svc.Move(game, domain.OwnerA, "H1", "B")
	if err != nil {
		t.Fatalf("move error: %v", err)
	}
	if len(evs) != 1 {
		t.Fatalf("events = %d, want 1", len(evs))
	}
	payload := evs[0].Payload.(StateUpdatePayload)
	if payload.Board[1][0] != "A-H1" {
		t.Fatalf("board (1,0) = %q, want A-H1", payload.Board[1][0])
	}
	if payload.Turn != domain.OwnerB {
		t.Fatalf("turn = %s, want B", payload.Turn)
	}
}

func TestMoveWrongTurn(t *testing.T) {
	svc := NewService(domain.Options{})
	game := svc.NewGame()
	mustDeploy(t, svc, game)

	if _, err := svc.Move(game, domain.OwnerB, "H1", "F"); !errors.Is(err, domain.ErrWrongTurn) {
		t.Fatalf("error = %v, want %v", err, domain.ErrWrongTurn)
	}
}

func TestMoveEmitsGameOver(t *testing.T) {
	svc := NewService(domain.Options{})
	game := domain.LoadPosition(map[domain.Position]domain.Cell{
		{Row: 2, Col: 2}: {Owner: domain.OwnerB, Type: domain.PiecePawn},
		{Row: 1, Col: 2}: {Owner: domain.OwnerA, Type: domain.PieceHero2},
	}, domain.OwnerB, domain.Options{})

	evs, err := svc.Move(game, domain.OwnerB, "P", "F")
	if err != nil {
		t.Fatalf("move error: %v", err)
	}
	if len(evs) != 2 || evs[1].Kind != EventGameOver {
		t.Fatalf("events = %+v, want state update then game over", evs)
	}
	if winner := evs[1].Payload.(GameOverPayload).Winner; winner != domain.OwnerB {
		t.Fatalf("winner = %q, want B", winner)
	}
}

func TestMatchSerializesConcurrentMoves(t *testing.T) {
	m := NewMatch(NewService(domain.Options{}))
	if _, err := m.Deploy(domain.OwnerA, deployA); err != nil {
		t.Fatalf("deploy A: %v", err)
	}
	if _, err := m.Deploy(domain.OwnerB, deployB); err != nil {
		t.Fatalf("deploy B: %v", err)
	}

	// Both seats race to move; exactly one of A's attempts can win the turn.
	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := m.Move(domain.OwnerA, "H1", "B")
			results <- err
		}()
		go func() {
			defer wg.Done()
			_ = m.State()
			results <- nil
		}()
	}
	wg.Wait()
	close(results)

	if m.Turn() != domain.OwnerB {
		t.Fatalf("turn = %s, want B", m.Turn())
	}
	if got := m.State()[1][0]; got != "A-H1" {
		t.Fatalf("(1,0) = %q, want A-H1", got)
	}
	wrongTurn := 0
	for err := range results {
		if errors.Is(err, domain.ErrWrongTurn) {
			wrongTurn++
		}
	}
	if wrongTurn != 3 {
		t.Fatalf("wrong turn rejections = %d, want 3", wrongTurn)
	}
	if m.IsOver() || m.Phase() != domain.PhaseInProgress {
		t.Fatalf("unexpected phase %s", m.Phase())
	}
}

func mustDeploy(t *testing.T, svc *Service, game *domain.Game) {
	t.Helper()
	if _, err := svc.Deploy(game, domain.OwnerA, deployA); err != nil {
		t.Fatalf("deploy A: %v", err)
	}
	if _, err := svc.Deploy(game, domain.OwnerB, deployB); err != nil {
		t.Fatalf("deploy B: %v", err)
	}
}

func TestMatchCountsAcceptedMoves(t *testing.T) {
	m := NewMatch(NewService(domain.Options{}))
	if _, err := m.Move(domain.OwnerA, "H1", "B"); !errors.Is(err, domain.ErrNotStarted) {
		t.Fatalf("error = %v, want %v", err, domain.ErrNotStarted)
	}
	_, _ = m.Deploy(domain.OwnerA, deployA)
	_, _ = m.Deploy(domain.OwnerB, deployB)
	if _, err := m.Move(domain.OwnerA, "H1", "B"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if m.Moves() != 1 {
		t.Fatalf("Moves() = %d, want 1", m.Moves())
	}

	var legal int
	m.View(func(g *domain.Game) { legal = len(g.LegalMoves(domain.OwnerB)) })
	if legal == 0 {
		t.Fatalf("expected legal moves for B")
	}
	if m.Winner() != "" {
		t.Fatalf("Winner() = %q before game over", m.Winner())
	}
}
