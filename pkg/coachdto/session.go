package coachdto

import "time"

type SessionState struct {
	SessionUUID     string          `json:"session_uuid"`
	Mode            string          `json:"mode"`
	Elo             int             `json:"elo"`
	MovesUCI        []string        `json:"moves_uci"`
	MovesSAN        []string        `json:"moves_san"`
	FEN             string          `json:"fen"`
	Turn            string          `json:"turn"`
	MoveCount       int             `json:"move_count"`
	Outcome         string          `json:"outcome,omitempty"`
	OutcomeMethod   string          `json:"outcome_method,omitempty"`
	Mistakes        int             `json:"mistakes"`
	Blunders        int             `json:"blunders"`
	SuggestionsUsed int             `json:"suggestions_used"`
	StartedAt       time.Time       `json:"started_at"`
	Profile         *LearnerProfile `json:"profile,omitempty"`
}
