package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"gridduel/internal/app"
	"gridduel/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"type":"deploy","data":["H1","P","P","P","H2"]}`))
	require.NoError(t, err)
	assert.Equal(t, TypeDeploy, cmd.Type)
	assert.Equal(t, []string{"H1", "P", "P", "P", "H2"}, cmd.Deploy)

	cmd, err = DecodeCommand([]byte(`{"type":"move","data":{"character":"H1:0,0","move":"F"}}`))
	require.NoError(t, err)
	assert.Equal(t, TypeMove, cmd.Type)
	assert.Equal(t, MovePayload{Character: "H1", Move: "F"}, cmd.Move)
}

func TestDecodeCommandErrors(t *testing.T) {
	_, err := DecodeCommand([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeCommand([]byte(`{"type":"chat","data":"hi"}`))
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = DecodeCommand([]byte(`{"type":"move","data":["H1"]}`))
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, "Invalid message", Reason(err))
}

func TestDecodeData(t *testing.T) {
	bare, err := DecodeData(TypeMove, []byte(`{"character":"P","move":"L"}`))
	require.NoError(t, err)
	assert.Equal(t, "P", bare.Move.Character)

	wrapped, err := DecodeData(TypeDeploy, []byte(`{"type":"deploy","data":["P","P","P","H1","H2"]}`))
	require.NoError(t, err)
	assert.Len(t, wrapped.Deploy, 5)
}

func TestExecute(t *testing.T) {
	m := app.NewMatch(app.NewService(domain.Options{}))

	evs, err := Execute(m, domain.OwnerA, Command{Type: TypeDeploy, Deploy: []string{"H1", "P", "P", "P", "H2"}})
	require.NoError(t, err)
	require.Len(t, evs, 1)

	_, err = Execute(m, domain.OwnerA, Command{Type: TypeMove, Move: MovePayload{Character: "H1", Move: "B"}})
	assert.ErrorIs(t, err, domain.ErrNotStarted)

	_, err = Execute(m, domain.OwnerA, Command{Type: "noop"})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestEncodeEvent(t *testing.T) {
	var board domain.Snapshot
	board[0][0] = "A-H1"

	raw, err := EncodeEvent(app.Event{Kind: app.EventStateUpdate, Payload: app.StateUpdatePayload{
		Actor:    domain.OwnerB,
		Board:    board,
		Turn:     domain.OwnerA,
		Phase:    domain.PhaseInProgress,
		Captured: []domain.Position{{Row: 1, Col: 2}},
	}})
	require.NoError(t, err)

	var frame struct {
		Type     string            `json:"type"`
		Data     [][]string        `json:"data"`
		Actor    domain.Owner      `json:"actor"`
		Captured []domain.Position `json:"captured"`
		Turn     domain.Owner      `json:"turn"`
		Phase    string            `json:"phase"`
	}
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, "state_update", frame.Type)
	assert.Equal(t, "A-H1", frame.Data[0][0])
	assert.Equal(t, "", frame.Data[4][4])
	assert.Equal(t, domain.OwnerA, frame.Turn)
	assert.Equal(t, "in_progress", frame.Phase)
	assert.Equal(t, domain.OwnerB, frame.Actor)
	assert.Equal(t, []domain.Position{{Row: 1, Col: 2}}, frame.Captured)

	raw, err = EncodeEvent(app.Event{Kind: app.EventGameOver, Payload: app.GameOverPayload{Winner: domain.OwnerB}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"response","message":"Game over","winner":"B"}`, string(raw))

	_, err = EncodeEvent(app.Event{Kind: "other", Payload: 42})
	assert.Error(t, err)
}

func TestEncodeError(t *testing.T) {
	assert.JSONEq(t, `{"type":"error","message":"Not your turn"}`, string(EncodeError(domain.ErrWrongTurn)))
	assert.JSONEq(t, `{"type":"error","message":"Internal error"}`, string(EncodeError(nil)))
	assert.JSONEq(t, `{"type":"error","message":"boom"}`, string(EncodeError(errors.New("boom"))))
}

func TestEncodeJoin(t *testing.T) {
	raw, err := EncodeJoin(JoinPayload{Seat: domain.OwnerB, UserID: "u1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"player_joined","data":{"seat":"B","user_id":"u1"}}`, string(raw))
}

func TestPieceTag(t *testing.T) {
	assert.Equal(t, "H2", PieceTag(" H2:3,4 "))
	assert.Equal(t, "h2", PieceTag("h2"), "tags are case-sensitive")
	assert.Equal(t, "P", PieceTag("P"))
	assert.Equal(t, "", PieceTag(""))
}
