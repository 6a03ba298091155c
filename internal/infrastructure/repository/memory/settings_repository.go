package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/live-sports-hub/internal/domain/setting"
)

type SettingsRepository struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{items: make(map[string]string)}
}

func (r *SettingsRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.items[strings.TrimSpace(key)]
	return value, ok, nil
}

func (r *SettingsRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	r.items[strings.TrimSpace(key)] = value
	r.mu.Unlock()
	return nil
}

func (r *SettingsRepository) List(_ context.Context) ([]setting.Setting, error) {
	r.mu.RLock()
	out := make([]setting.Setting, 0, len(r.items))
	for key, value := range r.items {
		out = append(out, setting.Setting{Key: key, Value: value})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
