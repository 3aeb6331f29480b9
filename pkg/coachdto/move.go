package coachdto

// MoveFeedback grades a played move against the engine's best line.
type MoveFeedback struct {
	PlayedSAN string `json:"played_san"`
	PlayedUCI string `json:"played_uci"`
	Grade     string `json:"grade"`
	LossCP    int    `json:"loss_cp"`
	BestUCI   string `json:"best_uci,omitempty"`
	BestSAN   string `json:"best_san,omitempty"`
	Text      string `json:"text"`
}

type MoveSummary struct {
	State    *SessionState `json:"state"`
	Feedback MoveFeedback  `json:"feedback"`
	Finished bool          `json:"finished"`
	GameID   int64         `json:"game_id,omitempty"`
}
