// Package protocol defines the JSON frames exchanged with duel clients.
//
// Inbound:
//
//	{"type":"deploy","data":["H1","P","P","P","H2"]}
//	{"type":"move","data":{"character":"H1","move":"F"}}
//
// Outbound:
//
//	{"type":"state_update","data":[[...5 cells...], ...]}
//	{"type":"error","message":"Not your turn"}
//	{"type":"response","message":"Game over"}
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gridduel/internal/app"
	"gridduel/internal/domain"
)

// Type tags every frame.
type Type string

const (
	TypeDeploy       Type = "deploy"
	TypeMove         Type = "move"
	TypeStateUpdate  Type = "state_update"
	TypeError        Type = "error"
	TypeResponse     Type = "response"
	TypePlayerJoined Type = "player_joined"
)

var (
	ErrMalformed   = errors.New("Invalid message")
	ErrUnknownType = errors.New("Unknown message type")
)

// Envelope is the common frame shape. Actor, Captured, Turn, Phase and
// Winner are additions older clients ignore.
type Envelope struct {
	Type     Type              `json:"type"`
	Data     json.RawMessage   `json:"data,omitempty"`
	Message  string            `json:"message,omitempty"`
	Actor    domain.Owner      `json:"actor,omitempty"`
	Captured []domain.Position `json:"captured,omitempty"`
	Turn     domain.Owner      `json:"turn,omitempty"`
	Phase    domain.Phase      `json:"phase,omitempty"`
	Winner   domain.Owner      `json:"winner,omitempty"`
}

// MovePayload is the data of a move command.
type MovePayload struct {
	Character string `json:"character"`
	Move      string `json:"move"`
}

// JoinPayload announces a seated participant.
type JoinPayload struct {
	Seat   domain.Owner `json:"seat"`
	UserID string       `json:"user_id"`
	Name   string       `json:"name,omitempty"`
	Bot    bool         `json:"bot,omitempty"`
}

// Command is a decoded inbound frame.
type Command struct {
	Type   Type
	Deploy []string
	Move   MovePayload
}

// DecodeCommand parses an inbound frame.
func DecodeCommand(raw []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return decodeData(env.Type, env.Data)
}

// DecodeData parses a command whose type is carried out of band, as with
// Nakama opcodes. data may be a bare payload or a full envelope.
func DecodeData(t Type, data []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Type == t {
		return decodeData(t, env.Data)
	}
	return decodeData(t, data)
}

func decodeData(t Type, data json.RawMessage) (Command, error) {
	cmd := Command{Type: t}
	switch t {
	case TypeDeploy:
		if err := json.Unmarshal(data, &cmd.Deploy); err != nil {
			return Command{}, fmt.Errorf("%w: deploy: %v", ErrMalformed, err)
		}
	case TypeMove:
		if err := json.Unmarshal(data, &cmd.Move); err != nil {
			return Command{}, fmt.Errorf("%w: move: %v", ErrMalformed, err)
		}
		cmd.Move.Character = PieceTag(cmd.Move.Character)
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return cmd, nil
}

// PieceTag strips the "H1:row,col" position hint some clients append.
// Tags stay case-sensitive, as deploy tags are.
func PieceTag(character string) string {
	if i := strings.IndexByte(character, ':'); i >= 0 {
		character = character[:i]
	}
	return strings.TrimSpace(character)
}

// Executor runs decoded commands against a match.
type Executor interface {
	Deploy(owner domain.Owner, tags []string) ([]app.Event, error)
	Move(owner domain.Owner, piece, direction string) ([]app.Event, error)
}

// Execute applies cmd for owner.
func Execute(m Executor, owner domain.Owner, cmd Command) ([]app.Event, error) {
	switch cmd.Type {
	case TypeDeploy:
		return m.Deploy(owner, cmd.Deploy)
	case TypeMove:
		return m.Move(owner, cmd.Move.Character, cmd.Move.Move)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cmd.Type)
	}
}

// EncodeEvent renders an app event as an outbound frame.
func EncodeEvent(ev app.Event) ([]byte, error) {
	switch p := ev.Payload.(type) {
	case app.StateUpdatePayload:
		board, err := json.Marshal(p.Board)
		if err != nil {
			return nil, err
		}
		return json.Marshal(Envelope{
			Type:     TypeStateUpdate,
			Data:     board,
			Actor:    p.Actor,
			Captured: p.Captured,
			Turn:     p.Turn,
			Phase:    p.Phase,
		})
	case app.GameOverPayload:
		return json.Marshal(Envelope{Type: TypeResponse, Message: app.GameOverMessage, Winner: p.Winner})
	default:
		return nil, fmt.Errorf("protocol: unsupported event %s", ev.Kind)
	}
}

// EncodeError renders a rejection for the sender.
func EncodeError(err error) []byte {
	msg := "Internal error"
	if err != nil {
		msg = Reason(err)
	}
	b, _ := json.Marshal(Envelope{Type: TypeError, Message: msg})
	return b
}

// EncodeJoin renders a player_joined frame.
func EncodeJoin(p JoinPayload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: TypePlayerJoined, Data: data})
}

// Reason maps an error to the client-facing string: the outermost known
// sentinel message, or the error text itself.
func Reason(err error) string {
	for _, known := range []error{ErrMalformed, ErrUnknownType} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
