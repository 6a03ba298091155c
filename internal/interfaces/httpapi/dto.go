package httpapi

import (
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/domain/favorite"
	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
	"github.com/riskibarqy/live-sports-hub/internal/usecase"
)

type sessionRequest struct {
	Sport  string `json:"sport" validate:"required,max=64"`
	League string `json:"league" validate:"max=128"`
}

type addFavoriteRequest struct {
	EventID  string `json:"event_id" validate:"required,max=64"`
	Sport    string `json:"sport" validate:"max=64"`
	HomeTeam string `json:"home_team" validate:"max=128"`
	AwayTeam string `json:"away_team" validate:"max=128"`
	League   string `json:"league" validate:"max=128"`
}

type putSettingRequest struct {
	Value string `json:"value" validate:"max=512"`
}

type statusDTO struct {
	Poller usecase.PollStatus  `json:"poller"`
	Board  usecase.BoardStatus `json:"board"`
}

type boardDTO struct {
	Status usecase.BoardStatus `json:"status"`
	Rows   []usecase.BoardRow  `json:"rows"`
}

type sessionDTO struct {
	SessionID string          `json:"session_id"`
	Session   usecase.Session `json:"session"`
}

type favoriteDTO struct {
	EventID  string `json:"event_id"`
	Sport    string `json:"sport"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	League   string `json:"league"`
	AddedAt  string `json:"added_at,omitempty"`
}

type toggleFavoriteDTO struct {
	EventID  string `json:"event_id"`
	Favorite bool   `json:"favorite"`
}

type settingDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type importDTO struct {
	Source     match.Source `json:"source"`
	EventCount int          `json:"event_count"`
	CapturedAt time.Time    `json:"captured_at"`
}

func favoriteToDTO(item favorite.Favorite) favoriteDTO {
	out := favoriteDTO{
		EventID:  item.EventID,
		Sport:    item.Sport,
		HomeTeam: item.HomeTeam,
		AwayTeam: item.AwayTeam,
		League:   item.League,
	}
	if !item.AddedAt.IsZero() {
		out.AddedAt = item.AddedAt.UTC().Format(time.RFC3339)
	}
	return out
}
