package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/live-sports-hub/internal/domain/setting"
	settingmock "github.com/riskibarqy/live-sports-hub/internal/mocks/domain/setting"
)

func TestSettingsService_GetFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := settingmock.NewRepository(t)
	service := NewSettingsService(repo)

	repo.On("Get", ctx, setting.KeyTheme).Return("", false, nil).Once()
	repo.On("Get", ctx, setting.KeyLanguage).Return("es", true, nil).Once()
	repo.On("Get", ctx, "unknown").Return("", false, nil).Once()

	theme, err := service.Get(ctx, setting.KeyTheme)
	if err != nil || theme != setting.DefaultTheme {
		t.Fatalf("unexpected theme: %q err=%v", theme, err)
	}
	language, err := service.Get(ctx, setting.KeyLanguage)
	if err != nil || language != "es" {
		t.Fatalf("unexpected language: %q err=%v", language, err)
	}
	value, err := service.Get(ctx, "unknown")
	if err != nil || value != "" {
		t.Fatalf("unexpected unknown value: %q err=%v", value, err)
	}

	if _, err := service.Get(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSettingsService_ListMergesDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := settingmock.NewRepository(t)
	service := NewSettingsService(repo)

	repo.On("List", ctx).Return([]setting.Setting{
		{Key: setting.KeyTheme, Value: "dark"},
		{Key: setting.KeySport, Value: "Tennis"},
	}, nil).Once()

	items, err := service.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []setting.Setting{
		{Key: setting.KeyLanguage, Value: setting.DefaultLanguage},
		{Key: setting.KeySport, Value: "Tennis"},
		{Key: setting.KeyTheme, Value: "dark"},
	}
	if len(items) != len(want) {
		t.Fatalf("unexpected settings: %+v", items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("setting %d: got %+v want %+v", i, items[i], want[i])
		}
	}
}

func TestSettingsService_SessionRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := settingmock.NewRepository(t)
	service := NewSettingsService(repo)

	repo.On("Set", ctx, setting.KeySport, "Basketball").Return(nil).Once()
	repo.On("Set", ctx, setting.KeyLeague, "").Return(nil).Once()
	if err := service.SaveSession(ctx, Session{Sport: "basketball", League: "all"}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	repo.On("Get", ctx, setting.KeySport).Return("", false, nil).Once()
	repo.On("Get", ctx, setting.KeyLeague).Return("", false, nil).Once()
	session, err := service.LastSession(ctx)
	if err != nil {
		t.Fatalf("last session: %v", err)
	}
	if session.Sport != "Soccer" || session.League != "" {
		t.Fatalf("unexpected default session: %+v", session)
	}
}
