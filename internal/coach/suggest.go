package coach

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// phase tracks where an inference call is in its lifecycle. Transitions are
// fixed; an out-of-order transition is a programming error surfaced loudly.
type phase int

const (
	phaseIdle phase = iota
	phaseAwaitingCandidates
	phaseScoring
	phaseExplaining
	phaseDone
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseAwaitingCandidates:
		return "awaiting_candidates"
	case phaseScoring:
		return "scoring"
	case phaseExplaining:
		return "explaining"
	case phaseDone:
		return "done"
	case phaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var phaseTransitions = map[phase][]phase{
	phaseIdle:               {phaseAwaitingCandidates, phaseFailed},
	phaseAwaitingCandidates: {phaseScoring, phaseFailed},
	phaseScoring:            {phaseExplaining, phaseFailed},
	phaseExplaining:         {phaseDone, phaseFailed},
}

type phaseTracker struct {
	current phase
}

func (t *phaseTracker) to(next phase) {
	for _, allowed := range phaseTransitions[t.current] {
		if allowed == next {
			t.current = next
			return
		}
	}
	panic(fmt.Sprintf("illegal phase transition %s -> %s", t.current, next))
}

// SuggestRequest asks for one coached move in a position.
type SuggestRequest struct {
	FEN  string
	K    int
	Mode Mode
	Elo  int
}

// Suggestion is the single successful outcome of an inference call: exactly
// one chosen move with its explanation, plus the full scored candidate list.
type Suggestion struct {
	Chosen      ScoredMove
	ChosenSAN   string
	Explanation Explanation
	Candidates  []ScoredMove
	Diagnostics []string
	Duration    time.Duration
}

const DefaultCandidateCount = 5

// Suggester sequences encode, candidate fetch, scoring, and explanation into
// one synchronous call. The oracle handle and the loaded model are the only
// shared resources; calls are otherwise independent.
type Suggester struct {
	oracle    Oracle
	scorer    Scorer
	explainer *Explainer
	defaultK  int
	logger    *zap.Logger
}

func NewSuggester(oracle Oracle, scorer Scorer, explainer *Explainer, logger *zap.Logger) (*Suggester, error) {
	if oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if explainer == nil {
		return nil, fmt.Errorf("explainer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{
		oracle:    oracle,
		scorer:    scorer,
		explainer: explainer,
		defaultK:  DefaultCandidateCount,
		logger:    logger,
	}, nil
}

// Suggest runs the full pipeline for one position. Identical inputs against
// identical model state yield identical output. Error semantics:
// ErrEncoding for malformed FEN (rejected before engine contact),
// ErrNoLegalMoves for terminal positions, ErrOracleUnavailable after the
// bounded retry, ErrScoring when no candidate survives scoring.
func (s *Suggester) Suggest(ctx context.Context, req SuggestRequest) (*Suggestion, error) {
	start := time.Now()
	tracker := &phaseTracker{current: phaseIdle}

	fail := func(err error) (*Suggestion, error) {
		tracker.to(phaseFailed)
		s.logger.Debug("suggestion failed",
			zap.String("fen", req.FEN),
			zap.Error(err),
		)
		return nil, err
	}

	pos, err := ParsePosition(req.FEN)
	if err != nil {
		return fail(err)
	}
	// Terminal positions are settled locally; no engine call is wasted.
	if len(pos.ValidMoves()) == 0 {
		return fail(ErrNoLegalMoves)
	}

	k := req.K
	if k <= 0 {
		k = s.defaultK
	}

	tracker.to(phaseAwaitingCandidates)
	candidates, err := s.oracle.TopCandidates(ctx, pos.String(), k)
	if err != nil {
		return fail(err)
	}
	if len(candidates) == 0 {
		return fail(ErrNoLegalMoves)
	}

	tracker.to(phaseScoring)
	scored, diagnostics, err := s.scorer.Score(pos, candidates, ScoreOptions{Elo: req.Elo, Mode: req.Mode})
	if err != nil {
		return fail(err)
	}

	tracker.to(phaseExplaining)
	chosen := scored[0]
	explanation, err := s.explainer.Explain(pos, chosen.Move)
	if err != nil {
		return fail(fmt.Errorf("explain %s: %w", chosen.Move, err))
	}

	tracker.to(phaseDone)
	return &Suggestion{
		Chosen:      chosen,
		ChosenSAN:   moveSAN(pos, chosen.Move),
		Explanation: explanation,
		Candidates:  scored,
		Diagnostics: diagnostics,
		Duration:    time.Since(start),
	}, nil
}

// SetDefaultCandidateCount overrides how many candidates a request without an
// explicit K asks the oracle for.
func (s *Suggester) SetDefaultCandidateCount(k int) {
	if k > 0 {
		s.defaultK = k
	}
}

// WhyNot lists short reasons lower-ranked candidates were rejected, for
// learning-mode output.
func (s *Suggester) WhyNot(fen string, rejected []ScoredMove, elo int) []string {
	pos, err := ParsePosition(fen)
	if err != nil {
		return nil
	}
	var out []string
	for _, r := range rejected {
		out = append(out, s.explainer.WhyNot(pos, r, elo)...)
	}
	return out
}

// LearningTip exposes the fixed coaching tip.
func (s *Suggester) LearningTip() string {
	return s.explainer.LearningTip()
}
