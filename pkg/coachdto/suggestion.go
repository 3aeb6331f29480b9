package coachdto

// ScoredCandidate is one oracle candidate after human-likeness scoring.
type ScoredCandidate struct {
	Move       string   `json:"move"`
	EvalCP     int      `json:"eval_cp"`
	Principal  []string `json:"principal,omitempty"`
	HumanScore float64  `json:"human_score"`
	Risk       string   `json:"risk"`
	Rank       int      `json:"rank"`
}

// ChosenMove is the structured form of the suggested move.
type ChosenMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// Suggestion is the coached move for a position: exactly one chosen move
// with its explanation.
type Suggestion struct {
	ChosenMove  ChosenMove        `json:"chosen_move"`
	Move        string            `json:"move"`
	MoveSAN     string            `json:"move_san"`
	Reason      string            `json:"reason"`
	Explanation string            `json:"explanation"`
	Candidates  []ScoredCandidate `json:"candidates"`
	Diagnostics []string          `json:"diagnostics,omitempty"`
	WhyNot      []string          `json:"why_not,omitempty"`
	Tip         string            `json:"tip,omitempty"`
	DurationMS  int64             `json:"duration_ms"`
}
