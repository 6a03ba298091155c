package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/live-sports-hub/internal/domain/favorite"
	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
)

// EventLookup finds an event in whatever snapshot is currently shown.
type EventLookup interface {
	FindEvent(eventID string) (match.MatchEvent, bool)
}

type FavoriteService struct {
	repo   favorite.Repository
	events EventLookup
}

func NewFavoriteService(repo favorite.Repository, events EventLookup) *FavoriteService {
	return &FavoriteService{
		repo:   repo,
		events: events,
	}
}

func (s *FavoriteService) Add(ctx context.Context, item favorite.Favorite) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoriteService.Add")
	defer span.End()

	item.EventID = strings.TrimSpace(item.EventID)
	if item.EventID == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	if err := s.repo.Add(ctx, item); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// AddEvent pins an event from the current snapshot by id.
func (s *FavoriteService) AddEvent(ctx context.Context, eventID string) (favorite.Favorite, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoriteService.AddEvent")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return favorite.Favorite{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	if s.events == nil {
		return favorite.Favorite{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}

	event, ok := s.events.FindEvent(eventID)
	if !ok {
		return favorite.Favorite{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}

	item := favorite.FromEvent(event)
	if err := s.Add(ctx, item); err != nil {
		return favorite.Favorite{}, err
	}
	return item, nil
}

func (s *FavoriteService) Remove(ctx context.Context, eventID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoriteService.Remove")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	if err := s.repo.Remove(ctx, eventID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// Toggle adds the event when it is not pinned yet and removes it otherwise.
func (s *FavoriteService) Toggle(ctx context.Context, eventID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoriteService.Toggle")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return false, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	exists, err := s.repo.Exists(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	if exists {
		return false, s.Remove(ctx, eventID)
	}

	if _, err := s.AddEvent(ctx, eventID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FavoriteService) List(ctx context.Context) ([]favorite.Favorite, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoriteService.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return items, nil
}

func (s *FavoriteService) IDs(ctx context.Context) (favorite.IDSet, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return favorite.NewIDSet(items), nil
}
