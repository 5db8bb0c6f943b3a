package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"gridduel/internal/app/onboarding"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// AfterAuthenticateDevice is triggered after an account is authenticated.
// It gives new accounts a readable display name.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	return onboardAfterAuth(ctx, logger, nk, out)
}

func onboardAfterAuth(ctx context.Context, logger runtime.Logger, accounts accountUpdater, out *api.Session) error {
	// Check if the account was just created
	if out != nil && out.Created {
		userID := ""
		if ctxUserID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); ok {
			userID = ctxUserID
		}
		if userID == "" {
			// Hooks may run without a user in ctx; fall back to the session token.
			resolvedID, err := extractUserIDFromToken(out.Token)
			if err != nil {
				logger.Error("AfterAuthenticateDevice: Failed to extract user ID from token: %v", err)
				return err
			}
			userID = resolvedID
		}

		logger.Info("Onboarding new user %s", userID)

		service := onboarding.NewService(NewNakamaAccountAdapter(accounts), nil)
		name, err := service.OnboardNewUser(ctx, userID)
		if err != nil {
			// A missing display name never blocks login.
			logger.Warn("AfterAuthenticateDevice: Onboarding failed for user %s: %v", userID, err)
			return nil
		}
		logger.Debug("AfterAuthenticateDevice: User %s is now %q", userID, name)
	}
	return nil
}

// extractUserIDFromToken reads the uid claim of a session token Nakama has
// just issued. The signature is Nakama's to check, not ours.
func extractUserIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}

	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return "", fmt.Errorf("token claims missing uid")
	}

	return uid, nil
}
