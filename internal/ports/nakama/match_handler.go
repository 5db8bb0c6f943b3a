package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"time"

	"gridduel/internal/app"
	"gridduel/internal/bot"
	"gridduel/internal/config"
	"gridduel/internal/domain"
	"gridduel/internal/ports"
	"gridduel/internal/protocol"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	MatchLabelKey_OpenSeats = "open"  // Key for the open seats in the match label
	MatchLabelKey_Phase     = "phase" // Key for the duel phase in the match label
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
// Seat 0 plays A, seat 1 plays B.
type MatchState struct {
	Seats                [app.SeatCount]string       `json:"seats"`                   // User IDs, empty string means seat is empty
	Names                [app.SeatCount]string       `json:"names"`                   // Display names per seat
	MatchID              string                      `json:"match_id"`                // Nakama match id, used as the results key
	Tick                 int64                       `json:"tick"`                    // Current tick of the match
	TickRate             int                         `json:"tick_rate"`               // Ticks per second
	Ended                bool                        `json:"ended"`                   // Game over has been broadcast
	EndedAtTick          int64                       `json:"ended_at_tick"`           // Tick the game ended; the next loop terminates
	BotWaitUntil         int64                       `json:"bot_wait_until"`          // Tick when the bot should act
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"` // Tick when a single player started waiting
	Config               config.GameConfig           `json:"-"`
	Presences            map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	Pending              map[string]int              `json:"-"` // Seats reserved by accepted join attempts
	Match                *app.Match                  `json:"-"`
	Bots                 map[string]*bot.Agent       `json:"-"` // Active bot agents
	Results              ports.ResultsPort           `json:"-"`

	label string
	rng   *rand.Rand
}

func seatOwner(seat int) domain.Owner {
	return domain.Owners[seat]
}

func seatIndex(owner domain.Owner) int {
	for i, o := range domain.Owners {
		if o == owner {
			return i
		}
	}
	return -1
}

// SeatOf returns the seat of userID or -1.
func (ms *MatchState) SeatOf(userID string) int {
	for i, id := range ms.Seats {
		if id != "" && id == userID {
			return i
		}
	}
	return -1
}

func (ms *MatchState) seatFree(seat int) bool {
	if ms.Seats[seat] != "" {
		return false
	}
	for _, reserved := range ms.Pending {
		if reserved == seat {
			return false
		}
	}
	return true
}

// OpenSeats counts seats neither occupied nor reserved.
func (ms *MatchState) OpenSeats() int {
	count := 0
	for i := range ms.Seats {
		if ms.seatFree(i) {
			count++
		}
	}
	return count
}

// HumanCount counts seated non-bot users.
func (ms *MatchState) HumanCount() int {
	count := 0
	for _, id := range ms.Seats {
		if id != "" && !bot.IsBot(id) {
			count++
		}
	}
	return count
}

// claimSeat returns preferred when free, else the lowest free seat, else -1.
func (ms *MatchState) claimSeat(preferred domain.Owner) int {
	if idx := seatIndex(preferred); idx >= 0 && ms.seatFree(idx) {
		return idx
	}
	for i := range ms.Seats {
		if ms.seatFree(i) {
			return i
		}
	}
	return -1
}

type matchHandler struct {
	results ports.ResultsPort
}

func newMatchHandler(results ports.ResultsPort) *matchHandler {
	return &matchHandler{results: results}
}

// MatchInit is called when the match is created.
// Params may override "allow_redeploy" and "bots_enabled".
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	cfg := config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		cfg.ApplyEnv(env)
	}
	if v, ok := params["allow_redeploy"].(bool); ok {
		cfg.AllowRedeploy = v
	}
	if v, ok := params["bots_enabled"].(bool); ok {
		cfg.BotsEnabled = v
	}

	results := mh.results
	if results == nil && nk != nil {
		results = NewNakamaResultsAdapter(nk)
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	state := &MatchState{
		MatchID:   matchID,
		TickRate:  cfg.TickRate,
		Config:    cfg,
		Presences: make(map[string]runtime.Presence),
		Pending:   make(map[string]int),
		Match:     app.NewMatch(app.NewService(domain.Options{AllowRedeploy: cfg.AllowRedeploy})),
		Bots:      make(map[string]*bot.Agent),
		Results:   results,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	label, err := buildLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.label = label

	logger.Debug("MatchInit: match %s (tick rate %d, bots %v, redeploy %v)", matchID, cfg.TickRate, cfg.BotsEnabled, cfg.AllowRedeploy)
	return state, cfg.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if matchState.Ended {
		return state, false, RejectMatchOver
	}

	userID := presence.GetUserId()
	if _, pending := matchState.Pending[userID]; pending || matchState.SeatOf(userID) >= 0 {
		return state, false, RejectAlreadyJoined
	}

	preferred, _ := domain.ParseOwner(metadata["player"])
	seat := matchState.claimSeat(preferred)
	if seat < 0 {
		return state, false, RejectMatchFull
	}
	matchState.Pending[userID] = seat
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		seat, reserved := matchState.Pending[userID]
		delete(matchState.Pending, userID)
		if !reserved {
			seat = matchState.claimSeat("")
		}
		if seat < 0 {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", userID)
			continue
		}

		matchState.Seats[seat] = userID
		matchState.Names[seat] = p.GetUsername()
		matchState.Presences[userID] = p
		logger.Info("MatchJoin: User %s seated as %s", userID, seatOwner(seat))

		mh.announceSeat(matchState, dispatcher, logger, seat, false)
		mh.sendState(matchState, dispatcher, logger, p)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)
		delete(matchState.Pending, userID)
		if seat := matchState.SeatOf(userID); seat >= 0 {
			matchState.Seats[seat] = ""
			matchState.Names[seat] = ""
			logger.Debug("MatchLeave: User %s left, seat %s freed.", userID, seatOwner(seat))
		}
	}

	if matchState.HumanCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick
	if matchState.Ended && tick > matchState.EndedAtTick {
		logger.Info("MatchLoop: Duel %s over, terminating.", matchState.MatchID)
		return nil
	}

	for _, msg := range messages {
		mh.handleCommand(ctx, matchState, dispatcher, logger, msg)
	}

	if matchState.Config.BotsEnabled && !matchState.Ended {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleCommand(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	seat := state.SeatOf(msg.GetUserId())
	if seat < 0 {
		mh.sendError(dispatcher, logger, msg, domain.ErrUnknownPlayer)
		return
	}

	var kind protocol.Type
	switch msg.GetOpCode() {
	case OpDeploy:
		kind = protocol.TypeDeploy
	case OpMove:
		kind = protocol.TypeMove
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		mh.sendError(dispatcher, logger, msg, protocol.ErrUnknownType)
		return
	}

	cmd, err := protocol.DecodeData(kind, msg.GetData())
	if err != nil {
		mh.sendError(dispatcher, logger, msg, err)
		return
	}

	owner := seatOwner(seat)
	events, err := protocol.Execute(state.Match, owner, cmd)
	if err != nil {
		logger.Debug("handleCommand: %s %s rejected: %v", owner, kind, err)
		mh.sendError(dispatcher, logger, msg, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Fill the free seat once a lone human has waited long enough.
	if state.HumanCount() == 1 && state.OpenSeats() > 0 {
		if state.LastSinglePlayerTick == 0 {
			state.LastSinglePlayerTick = state.Tick
			logger.Debug("processBots: Single player detected, starting auto-fill timer.")
		}
		if state.Tick-state.LastSinglePlayerTick >= int64(state.Config.BotAutoFillDelaySeconds*state.TickRate) {
			mh.addBot(state, dispatcher, logger)
			state.LastSinglePlayerTick = 0
		}
	} else {
		state.LastSinglePlayerTick = 0
	}

	// 2. Bots deploy as soon as they are seated.
	for seat, userID := range state.Seats {
		agent, ok := state.Bots[userID]
		if !ok {
			continue
		}
		owner := seatOwner(seat)
		var deployed bool
		state.Match.View(func(g *domain.Game) { deployed = g.Deployed(owner) })
		if deployed {
			continue
		}
		events, err := state.Match.Deploy(owner, agent.DeployTags())
		if err != nil {
			logger.Error("processBots: Bot %s failed to deploy: %v", userID, err)
			continue
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	}

	// 3. Handle bot turns in-game.
	if state.Ended || state.Match.Phase() != domain.PhaseInProgress {
		state.BotWaitUntil = 0
		return
	}
	owner := state.Match.Turn()
	userID := state.Seats[seatIndex(owner)]
	agent, ok := state.Bots[userID]
	if !ok {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		minDelay, maxDelay := state.Config.BotMinDelaySeconds, state.Config.BotMaxDelaySeconds
		delay := state.rng.Intn(maxDelay-minDelay+1) + minDelay
		state.BotWaitUntil = state.Tick + int64(delay*state.TickRate)
		logger.Debug("processBots: Bot %s (%s) will act at tick %d (current %d)", userID, owner, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	var (
		move bot.Move
		err  error
	)
	state.Match.View(func(g *domain.Game) { move, err = agent.Play(g, owner) })
	if err != nil {
		logger.Error("processBots: Bot %s failed to calculate move: %v", userID, err)
		return
	}
	events, err := state.Match.Move(owner, string(move.Piece), string(move.Direction))
	if err != nil {
		logger.Error("processBots: Bot %s move %+v rejected: %v", userID, move, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) addBot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	seat := state.claimSeat("")
	if seat < 0 {
		return
	}
	agent, err := bot.NewAgent(bot.ParseLevel(state.Config.BotLevel), state.rng)
	if err != nil {
		logger.Error("processBots: Failed to create bot agent: %v", err)
		return
	}
	state.Seats[seat] = agent.ID
	state.Names[seat] = agent.Name
	state.Bots[agent.ID] = agent
	logger.Info("processBots: Added bot %s (%s) as %s", agent.Name, agent.ID, seatOwner(seat))

	mh.announceSeat(state, dispatcher, logger, seat, true)
	mh.updateLabel(state, dispatcher, logger)
}

// dispatchEvents encodes app events and broadcasts them to the match.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		data, err := protocol.EncodeEvent(ev)
		if err != nil {
			logger.Error("Failed to encode event %v: %v", ev.Kind, err)
			continue
		}

		opCode := OpStateUpdate
		if ev.Kind == app.EventGameOver {
			opCode = OpResponse
		}

		if err := dispatcher.BroadcastMessage(opCode, data, nil, nil, true); err != nil {
			logger.Error("Failed to broadcast %v: %v", ev.Kind, err)
		}

		if ev.Kind == app.EventGameOver {
			mh.finish(ctx, state, dispatcher, logger, ev.Payload.(app.GameOverPayload))
		}
	}
	mh.updateLabel(state, dispatcher, logger)
}

// finish records the result once; the next loop terminates the match.
func (mh *matchHandler) finish(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, p app.GameOverPayload) {
	if state.Ended {
		return
	}
	state.Ended = true
	state.EndedAtTick = state.Tick
	logger.Info("Duel %s over, winner %s", state.MatchID, p.Winner)

	if state.Results == nil {
		return
	}
	players := make(map[string]string, len(state.Seats))
	for seat, userID := range state.Seats {
		if userID != "" {
			players[string(seatOwner(seat))] = userID
		}
	}
	err := state.Results.RecordResult(ctx, ports.MatchResult{
		MatchID:  state.MatchID,
		Winner:   string(p.Winner),
		Players:  players,
		Board:    p.Board,
		Moves:    state.Match.Moves(),
		Finished: time.Now().UTC(),
	})
	if err != nil {
		logger.Error("Failed to record result for %s: %v", state.MatchID, err)
	}
}

func (mh *matchHandler) announceSeat(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, seat int, isBot bool) {
	data, err := protocol.EncodeJoin(protocol.JoinPayload{
		Seat:   seatOwner(seat),
		UserID: state.Seats[seat],
		Name:   state.Names[seat],
		Bot:    isBot,
	})
	if err != nil {
		logger.Error("Failed to encode player_joined: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpPlayerJoined, data, nil, nil, true); err != nil {
		logger.Error("Failed to broadcast player_joined: %v", err)
	}
}

// sendState gives a late joiner the current board.
func (mh *matchHandler) sendState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, to runtime.Presence) {
	data, err := protocol.EncodeEvent(app.Event{
		Kind: app.EventStateUpdate,
		Payload: app.StateUpdatePayload{
			Board: state.Match.State(),
			Turn:  state.Match.Turn(),
			Phase: state.Match.Phase(),
		},
	})
	if err != nil {
		logger.Error("Failed to encode state: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpStateUpdate, data, []runtime.Presence{to}, nil, true); err != nil {
		logger.Error("Failed to send state to %s: %v", to.GetUserId(), err)
	}
}

// sendError reports a rejected command to its sender only.
func (mh *matchHandler) sendError(dispatcher runtime.MatchDispatcher, logger runtime.Logger, to runtime.Presence, cause error) {
	if err := dispatcher.BroadcastMessage(OpError, protocol.EncodeError(cause), []runtime.Presence{to}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", to.GetUserId(), err)
	}
}

func buildLabel(state *MatchState) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		"game":                  "gridduel",
		MatchLabelKey_OpenSeats: state.OpenSeats(),
		MatchLabelKey_Phase:     string(state.Match.Phase()),
	})
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if label == state.label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.label = label
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated (grace %ds)", graceSeconds)
	return state
}

// MatchSignal answers "state" with the board snapshot as JSON.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok || data != "state" {
		return state, ""
	}
	b, err := json.Marshal(matchState.Match.State())
	if err != nil {
		logger.Error("MatchSignal: %v", err)
		return state, ""
	}
	return state, string(b)
}
