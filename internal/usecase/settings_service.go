package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentkick/fixturesync/internal/domain/settings"
	"github.com/talentkick/fixturesync/internal/platform/logging"
)

// SettingsService manages the provider access token. The token is the
// only credential in the system and is stored server-side so browser
// clients never see it.
type SettingsService struct {
	settings settings.Repository
	logger   *logging.Logger
}

func NewSettingsService(settingsRepo settings.Repository, logger *logging.Logger) *SettingsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SettingsService{settings: settingsRepo, logger: logger}
}

// ProviderTokenStatus reports whether a token is configured without
// ever returning the token value.
func (s *SettingsService) ProviderTokenStatus(ctx context.Context) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettingsService.ProviderTokenStatus")
	defer span.End()

	value, ok, err := s.settings.Get(ctx, settings.KeyProviderToken)
	if err != nil {
		return false, fmt.Errorf("load provider token: %w", err)
	}
	return ok && strings.TrimSpace(value) != "", nil
}

func (s *SettingsService) SetProviderToken(ctx context.Context, token string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettingsService.SetProviderToken")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token must not be empty", ErrInvalidInput)
	}

	if err := s.settings.Put(ctx, settings.KeyProviderToken, token); err != nil {
		return fmt.Errorf("store provider token: %w", err)
	}
	s.logger.InfoContext(ctx, "provider token updated")
	return nil
}
