package coachdto

type SuggestRequest struct {
	FEN  string `json:"fen"`
	K    int    `json:"k,omitempty"`
	Mode string `json:"mode,omitempty"`
	Elo  int    `json:"elo,omitempty"`
}

type StartSessionRequest struct {
	Learner string `json:"learner"`
	Mode    string `json:"mode,omitempty"`
	Elo     int    `json:"elo,omitempty"`
}

type StartSessionResponse struct {
	State   *SessionState `json:"state"`
	Resumed bool          `json:"resumed"`
}

type PlayRequest struct {
	Learner string `json:"learner"`
	Move    string `json:"move"`
}

type PlayResponse struct {
	Summary *MoveSummary `json:"summary"`
}

type SessionSuggestRequest struct {
	Learner string `json:"learner"`
}

type EndSessionRequest struct {
	Learner string `json:"learner"`
}

type EndSessionResponse struct {
	State *SessionState `json:"state"`
}

type PreferencesRequest struct {
	Learner string `json:"learner"`
	Mode    string `json:"mode"`
	Elo     int    `json:"elo,omitempty"`
}
