package coach

import (
	"fmt"
	"math"
	"sort"

	nchess "github.com/corentings/chess/v2"
)

// Mode selects how risk-averse the ranking is. Safe and learning modes
// penalize candidates the engine considers mistakes.
type Mode string

const (
	ModePractical Mode = "practical"
	ModeSafe      Mode = "safe"
	ModeLearning  Mode = "learning"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModePractical, ModeSafe, ModeLearning:
		return Mode(s), true
	case "":
		return ModePractical, true
	default:
		return "", false
	}
}

// RiskLabel grades a candidate by its centipawn loss against the engine's
// best line.
type RiskLabel string

const (
	RiskNone    RiskLabel = "ok"
	RiskMistake RiskLabel = "mistake"
	RiskBlunder RiskLabel = "blunder"
)

// Centipawn-loss thresholds for risk grading, matching the eval-drop bands
// the feedback copy was written for (0.7 and 1.5 pawns).
const (
	mistakeLossCP = 70
	blunderLossCP = 150

	riskPenalty = 20.0
)

// ScoredMove is a candidate annotated with its human-likeness score. Higher
// is more natural for a beginner; Rank is 1-based after sorting.
type ScoredMove struct {
	Candidate
	HumanScore float64
	Risk       RiskLabel
	Rank       int
}

// ScoreOptions carry the per-call context the model was trained with.
type ScoreOptions struct {
	Elo  int
	Mode Mode
}

// Scorer ranks oracle candidates by human-likeness. Implementations never
// introduce moves outside the candidate set and must keep the sort stable so
// equal scores preserve the oracle's best-first order.
type Scorer interface {
	Score(pos *nchess.Position, candidates []Candidate, opts ScoreOptions) ([]ScoredMove, []string, error)
}

// LinearScorer applies the logistic-regression weights over the feature
// vector of each candidate. Candidates whose features cannot be built are
// dropped with a diagnostic; the call fails only when nothing survives.
type LinearScorer struct {
	weights *Weights
}

func NewLinearScorer(w *Weights) *LinearScorer {
	if w == nil {
		w = DefaultWeights()
	}
	return &LinearScorer{weights: w}
}

func (s *LinearScorer) Score(pos *nchess.Position, candidates []Candidate, opts ScoreOptions) ([]ScoredMove, []string, error) {
	if len(candidates) == 0 {
		return nil, nil, fmt.Errorf("%w: empty candidate set", ErrScoring)
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModePractical
	}
	bestEval := candidates[0].EvalCP

	scored := make([]ScoredMove, 0, len(candidates))
	var diagnostics []string
	for _, cand := range candidates {
		fv, err := ExtractFeatures(pos, cand.Move, opts.Elo)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("dropped %s: %v", cand.Move, err))
			continue
		}

		score := sigmoid(s.weights.dot(fv)) * 100
		risk := riskFromLoss(bestEval - cand.EvalCP)
		if risk != RiskNone && (mode == ModeSafe || mode == ModeLearning) {
			score -= riskPenalty
		}

		scored = append(scored, ScoredMove{
			Candidate:  cand,
			HumanScore: score,
			Risk:       risk,
		})
	}

	if len(scored) == 0 {
		return nil, diagnostics, fmt.Errorf("%w: all %d candidates dropped", ErrScoring, len(candidates))
	}

	// Stable: ties keep the oracle's best-first order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].HumanScore > scored[j].HumanScore
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored, diagnostics, nil
}

func riskFromLoss(lossCP int) RiskLabel {
	switch {
	case lossCP > blunderLossCP:
		return RiskBlunder
	case lossCP > mistakeLossCP:
		return RiskMistake
	default:
		return RiskNone
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
