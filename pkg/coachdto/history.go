package coachdto

import "time"

type GameRecord struct {
	ID              int64     `json:"id"`
	SessionUUID     string    `json:"session_uuid"`
	Mode            string    `json:"mode"`
	Elo             int       `json:"elo"`
	Result          string    `json:"result"`
	ResultMethod    string    `json:"result_method"`
	MovesUCI        []string  `json:"moves_uci"`
	MovesSAN        []string  `json:"moves_san"`
	PGN             string    `json:"pgn"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationMS      int64     `json:"duration_ms"`
	Mistakes        int       `json:"mistakes"`
	Blunders        int       `json:"blunders"`
	SuggestionsUsed int       `json:"suggestions_used"`
}

type HistoryResponse struct {
	Games []GameRecord `json:"games"`
}
