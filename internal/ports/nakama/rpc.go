package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gridduel/internal/app"
	"gridduel/internal/config"
	"gridduel/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	envSeatSecret  = "gridduel_seat_secret"
	seatIssuer     = "gridduel"
	defaultSeatTTL = time.Hour
)

// createMatchRequest is the optional create_match payload.
type createMatchRequest struct {
	AllowRedeploy *bool `json:"allow_redeploy,omitempty"`
	BotsEnabled   *bool `json:"bots_enabled,omitempty"`
}

type createMatchResponse struct {
	MatchID string `json:"match_id"`
}

// RpcCreateMatchHandler creates a new authoritative duel.
//
// Payload: (Optional) {"allow_redeploy": bool, "bots_enabled": bool}.
// Returns: {"match_id": "..."}.
func RpcCreateMatchHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	params := map[string]interface{}{}
	if strings.TrimSpace(payload) != "" {
		var req createMatchRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid create_match payload", 3)
		}
		if req.AllowRedeploy != nil {
			params["allow_redeploy"] = *req.AllowRedeploy
		}
		if req.BotsEnabled != nil {
			params["bots_enabled"] = *req.BotsEnabled
		}
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameGridDuel, params)
	if err != nil {
		logger.Error("RpcCreateMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}
	logger.Info("RpcCreateMatch [User:%s]: Created new match %s", userID, matchID)

	out, err := json.Marshal(createMatchResponse{MatchID: matchID})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type seatTokenRequest struct {
	MatchID string `json:"match_id"`
	Seat    string `json:"seat"`
}

type seatTokenResponse struct {
	Token     string `json:"token"`
	Seat      string `json:"seat"`
	ExpiresIn int    `json:"expires_in"`
}

// RpcSeatTokenHandler mints a seat token accepted by the standalone websocket
// router sharing the same secret.
//
// Payload: {"match_id": "...", "seat": "A"|"B"}.
func RpcSeatTokenHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", 16)
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg := config.GetGameConfig()
	cfg.ApplyEnv(env)
	ttl := time.Duration(cfg.SeatTokenTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultSeatTTL
	}

	tokens := app.NewSeatTokens(env[envSeatSecret], seatIssuer, ttl)
	if tokens == nil {
		return "", runtime.NewError("seat tokens are not configured", 9)
	}

	var req seatTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid seat_token payload", 3)
	}
	seat, err := domain.ParseOwner(req.Seat)
	if err != nil {
		return "", runtime.NewError(err.Error(), 3)
	}

	token, err := tokens.Issue(req.MatchID, seat)
	if err != nil {
		logger.Error("RpcSeatToken [User:%s]: %v", userID, err)
		return "", fmt.Errorf("issue seat token: %w", err)
	}

	out, err := json.Marshal(seatTokenResponse{Token: token, Seat: string(seat), ExpiresIn: int(ttl.Seconds())})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RegisterRPCs registers all RPC functions with the Nakama initializer.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateMatch, RpcCreateMatchHandler); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcSeatToken, RpcSeatTokenHandler)
}
