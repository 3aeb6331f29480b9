package domain

import "time"

// CoachGame is one finished practice game, persisted when a coaching
// session ends.
type CoachGame struct {
	ID              int64
	SessionUUID     string
	LearnerHash     string
	Mode            string
	Elo             int
	Result          string
	ResultMethod    string
	MovesUCI        []string
	MovesSAN        []string
	PGN             string
	StartedAt       time.Time
	EndedAt         time.Time
	Duration        time.Duration
	Mistakes        int
	Blunders        int
	SuggestionsUsed int
}

// LearnerProfile accumulates per-learner progress across sessions.
type LearnerProfile struct {
	LearnerHash     string
	Elo             int
	PreferredMode   string
	SessionsPlayed  int
	MovesPlayed     int
	Mistakes        int
	Blunders        int
	SuggestionsUsed int
	LastMode        string
	LastPlayedAt    time.Time
	UpdatedAt       time.Time
	CreatedAt       time.Time
}
