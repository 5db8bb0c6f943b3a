package onboarding

import (
	"context"
	"fmt"
	"strings"

	"gridduel/internal/ports"

	petname "github.com/dustinkirkland/golang-petname"
)

const nameWords = 2

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	namer    func() string
}

// NewService constructs an onboarding service. namer may be nil to use
// generated petnames.
func NewService(accounts ports.AccountPort, namer func() string) *Service {
	if namer == nil {
		namer = FriendlyName
	}
	return &Service{accounts: accounts, namer: namer}
}

// OnboardNewUser gives a newly created account a readable display name.
// Returns the name that was applied.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (string, error) {
	if s.accounts == nil {
		return "", fmt.Errorf("onboarding service not configured")
	}
	if userID == "" {
		return "", fmt.Errorf("onboarding: empty user id")
	}

	displayName := s.namer()
	if err := s.accounts.UpdateProfile(ctx, userID, "", displayName); err != nil {
		return "", fmt.Errorf("failed to set display name: %w", err)
	}
	return displayName, nil
}

// FriendlyName returns a title-cased petname such as "BraveOtter".
func FriendlyName() string {
	parts := strings.Split(petname.Generate(nameWords, "-"), "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}
