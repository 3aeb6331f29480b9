package coachdto

import "time"

type LearnerProfile struct {
	Elo             int       `json:"elo"`
	PreferredMode   string    `json:"preferred_mode,omitempty"`
	SessionsPlayed  int       `json:"sessions_played"`
	MovesPlayed     int       `json:"moves_played"`
	Mistakes        int       `json:"mistakes"`
	Blunders        int       `json:"blunders"`
	SuggestionsUsed int       `json:"suggestions_used"`
	LastMode        string    `json:"last_mode,omitempty"`
	LastPlayedAt    time.Time `json:"last_played_at,omitempty"`
}
