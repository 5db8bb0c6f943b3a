package domain

import "testing"

func TestNewGame(t *testing.T) {
	g := NewGame(Options{})

	if g.Phase() != PhaseAwaitingDeployment {
		t.Fatalf("phase = %s, want %s", g.Phase(), PhaseAwaitingDeployment)
	}
	if g.Turn() != OwnerA {
		t.Fatalf("turn = %s, want A", g.Turn())
	}
	if g.IsOver() {
		t.Fatalf("empty rosters before deployment must not end the game")
	}
	if g.CurrentState() != (Snapshot{}) {
		t.Fatalf("new board not empty")
	}
}

func TestPartialDeploymentKeepsAwaiting(t *testing.T) {
	g := NewGame(Options{})
	if _, err := g.Deploy(OwnerB, standardDeployment()); err != nil {
		t.Fatalf("deploy B: %v", err)
	}
	if g.Phase() != PhaseAwaitingDeployment {
		t.Fatalf("phase = %s, want %s", g.Phase(), PhaseAwaitingDeployment)
	}
	if g.IsOver() {
		t.Fatalf("game over with one side undeployed")
	}
	if snap := g.CurrentState(); snap[4][0] != "B-H1" {
		t.Fatalf("(4,0) = %q, want B-H1", snap[4][0])
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	g := deployedGame(t, Options{})
	snap := g.CurrentState()
	snap[0][0] = "tampered"

	if g.CurrentState()[0][0] != "A-H1" {
		t.Fatalf("mutating a snapshot leaked into the engine")
	}
}

func TestRosterIsCopy(t *testing.T) {
	g := deployedGame(t, Options{})
	roster := g.Roster(OwnerA)
	roster[0].Position = Position{Row: 3, Col: 3}

	if g.Roster(OwnerA)[0].Position == (Position{Row: 3, Col: 3}) {
		t.Fatalf("mutating a roster copy leaked into the engine")
	}
}

func TestLoadPosition(t *testing.T) {
	tests := []struct {
		name      string
		cells     map[Position]Cell
		wantPhase Phase
		wantA     int
		wantB     int
	}{
		{
			name: "both sides present",
			cells: map[Position]Cell{
				{Row: 0, Col: 0}: {Owner: OwnerA, Type: PiecePawn},
				{Row: 4, Col: 4}: {Owner: OwnerB, Type: PieceHero2},
				{Row: 9, Col: 9}: {Owner: OwnerB, Type: PieceHero1},
			},
			wantPhase: PhaseInProgress,
			wantA:     1,
			wantB:     1,
		},
		{
			name: "one side empty",
			cells: map[Position]Cell{
				{Row: 2, Col: 2}: {Owner: OwnerA, Type: PieceHero1},
			},
			wantPhase: PhaseOver,
			wantA:     1,
			wantB:     0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := LoadPosition(tt.cells, OwnerA, Options{})
			if g.Phase() != tt.wantPhase {
				t.Fatalf("phase = %s, want %s", g.Phase(), tt.wantPhase)
			}
			if g.RosterSize(OwnerA) != tt.wantA || g.RosterSize(OwnerB) != tt.wantB {
				t.Fatalf("rosters = %d/%d, want %d/%d", g.RosterSize(OwnerA), g.RosterSize(OwnerB), tt.wantA, tt.wantB)
			}
		})
	}
}

func TestCellString(t *testing.T) {
	if got := (Cell{}).String(); got != "" {
		t.Fatalf("empty cell = %q", got)
	}
	if got := (Cell{Owner: OwnerB, Type: PieceHero2}).String(); got != "B-H2" {
		t.Fatalf("cell = %q, want B-H2", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := LoadPosition(map[Position]Cell{
		{Row: 0, Col: 0}: {Owner: OwnerA, Type: PiecePawn},
		{Row: 4, Col: 4}: {Owner: OwnerB, Type: PiecePawn},
	}, OwnerA, Options{})

	c := g.Clone()
	if _, err := c.Move(OwnerA, PiecePawn, DirBack); err != nil {
		t.Fatalf("clone move: %v", err)
	}
	if g.CellAt(Position{Row: 0, Col: 0}).Empty() {
		t.Fatalf("original board changed by clone move")
	}
	if g.Turn() != OwnerA {
		t.Fatalf("original turn = %s, want A", g.Turn())
	}
	if got := g.Roster(OwnerA)[0].Position; got != (Position{Row: 0, Col: 0}) {
		t.Fatalf("original roster position = %+v", got)
	}
}
