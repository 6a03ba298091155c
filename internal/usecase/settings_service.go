package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/live-sports-hub/internal/domain/setting"
)

type SettingsService struct {
	repo setting.Repository
}

func NewSettingsService(repo setting.Repository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Get returns the stored value, the built-in default, or "" for unknown keys.
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettingsService.Get")
	defer span.End()

	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: setting key is required", ErrInvalidInput)
	}

	value, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	if ok {
		return value, nil
	}
	return setting.Defaults()[key], nil
}

func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettingsService.Set")
	defer span.End()

	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: setting key is required", ErrInvalidInput)
	}

	if err := s.repo.Set(ctx, key, value); err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// List merges stored values over the defaults, ordered by key.
func (s *SettingsService) List(ctx context.Context) ([]setting.Setting, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettingsService.List")
	defer span.End()

	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	merged := setting.Defaults()
	for _, item := range stored {
		merged[item.Key] = item.Value
	}

	out := make([]setting.Setting, 0, len(merged))
	for key, value := range merged {
		out = append(out, setting.Setting{Key: key, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// LastSession restores the sport and league the user last watched.
func (s *SettingsService) LastSession(ctx context.Context) (Session, error) {
	sport, err := s.Get(ctx, setting.KeySport)
	if err != nil {
		return Session{}, err
	}
	league, err := s.Get(ctx, setting.KeyLeague)
	if err != nil {
		return Session{}, err
	}
	return Session{Sport: sport, League: league}.Normalize(), nil
}

func (s *SettingsService) SaveSession(ctx context.Context, session Session) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettingsService.SaveSession")
	defer span.End()

	session = session.Normalize()
	if err := s.Set(ctx, setting.KeySport, session.Sport); err != nil {
		return err
	}
	return s.Set(ctx, setting.KeyLeague, session.League)
}
