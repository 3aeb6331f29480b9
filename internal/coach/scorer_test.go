package coach

import (
	"errors"
	"testing"
)

func startposCandidates() []Candidate {
	return []Candidate{
		{Move: "e2e4", EvalCP: 30},
		{Move: "d2d4", EvalCP: 28},
		{Move: "g1f3", EvalCP: 25},
		{Move: "c2c4", EvalCP: 22},
		{Move: "g2g3", EvalCP: 15},
	}
}

func TestScoreRanksDevelopmentHighest(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	scorer := NewLinearScorer(nil)

	scored, diagnostics, err := scorer.Score(pos, startposCandidates(), ScoreOptions{Elo: 800})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagnostics)
	}
	if len(scored) != 5 {
		t.Fatalf("scored %d candidates, want 5", len(scored))
	}
	// The development bonus outweighs the pawn pushes under the default
	// weights, so the knight move comes out on top.
	if scored[0].Move != "g1f3" {
		t.Fatalf("top move = %s, want g1f3", scored[0].Move)
	}
	for i, sm := range scored {
		if sm.Rank != i+1 {
			t.Fatalf("rank at index %d = %d", i, sm.Rank)
		}
		if i > 0 && scored[i-1].HumanScore < sm.HumanScore {
			t.Fatalf("scores not descending at index %d", i)
		}
	}
}

func TestScoreTiesKeepOracleOrder(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	// No coefficients: every candidate scores identically, so the stable
	// sort must preserve the oracle's best-first order.
	scorer := NewLinearScorer(&Weights{Coefficients: map[string]float64{}})
	candidates := startposCandidates()

	scored, _, err := scorer.Score(pos, candidates, ScoreOptions{Elo: 800})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for i, sm := range scored {
		if sm.Move != candidates[i].Move {
			t.Fatalf("index %d: got %s, want %s", i, sm.Move, candidates[i].Move)
		}
	}
}

func TestScoreRiskLabels(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	candidates := []Candidate{
		{Move: "e2e4", EvalCP: 30},
		{Move: "g1f3", EvalCP: -50},  // 80cp loss
		{Move: "g2g4", EvalCP: -130}, // 160cp loss
	}
	scorer := NewLinearScorer(nil)
	scored, _, err := scorer.Score(pos, candidates, ScoreOptions{Elo: 800})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	byMove := make(map[string]ScoredMove, len(scored))
	for _, sm := range scored {
		byMove[sm.Move] = sm
	}
	if byMove["e2e4"].Risk != RiskNone {
		t.Fatalf("e2e4 risk = %s", byMove["e2e4"].Risk)
	}
	if byMove["g1f3"].Risk != RiskMistake {
		t.Fatalf("g1f3 risk = %s", byMove["g1f3"].Risk)
	}
	if byMove["g2g4"].Risk != RiskBlunder {
		t.Fatalf("g2g4 risk = %s", byMove["g2g4"].Risk)
	}
}

func TestScoreSafeModePenalizesRisk(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	candidates := []Candidate{
		{Move: "e2e4", EvalCP: 30},
		{Move: "g1f3", EvalCP: -60}, // mistake band
	}
	scorer := NewLinearScorer(nil)

	practical, _, err := scorer.Score(pos, candidates, ScoreOptions{Elo: 800, Mode: ModePractical})
	if err != nil {
		t.Fatalf("practical: %v", err)
	}
	safe, _, err := scorer.Score(pos, candidates, ScoreOptions{Elo: 800, Mode: ModeSafe})
	if err != nil {
		t.Fatalf("safe: %v", err)
	}

	find := func(moves []ScoredMove, uci string) ScoredMove {
		for _, sm := range moves {
			if sm.Move == uci {
				return sm
			}
		}
		t.Fatalf("move %s missing", uci)
		return ScoredMove{}
	}
	p := find(practical, "g1f3")
	s := find(safe, "g1f3")
	if s.HumanScore >= p.HumanScore {
		t.Fatalf("safe mode should penalize the mistake: %v vs %v", s.HumanScore, p.HumanScore)
	}
	if s.HumanScore != p.HumanScore-riskPenalty {
		t.Fatalf("penalty = %v, want %v", p.HumanScore-s.HumanScore, riskPenalty)
	}
	// Safe-to-play moves are untouched.
	if find(safe, "e2e4").HumanScore != find(practical, "e2e4").HumanScore {
		t.Fatalf("safe mode changed a risk-free score")
	}
}

func TestScoreDropsBadCandidatesWithDiagnostics(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	candidates := []Candidate{
		{Move: "e2e4", EvalCP: 30},
		{Move: "e2e5", EvalCP: 20}, // illegal
	}
	scorer := NewLinearScorer(nil)
	scored, diagnostics, err := scorer.Score(pos, candidates, ScoreOptions{Elo: 800})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(scored) != 1 || scored[0].Move != "e2e4" {
		t.Fatalf("scored = %v", scored)
	}
	if len(diagnostics) != 1 {
		t.Fatalf("diagnostics = %v", diagnostics)
	}
}

func TestScoreFailsWhenNothingSurvives(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	scorer := NewLinearScorer(nil)

	_, _, err = scorer.Score(pos, nil, ScoreOptions{Elo: 800})
	if !errors.Is(err, ErrScoring) {
		t.Fatalf("empty set: err = %v", err)
	}

	_, diagnostics, err := scorer.Score(pos, []Candidate{{Move: "e2e5"}, {Move: "a1a8"}}, ScoreOptions{Elo: 800})
	if !errors.Is(err, ErrScoring) {
		t.Fatalf("all dropped: err = %v", err)
	}
	if len(diagnostics) != 2 {
		t.Fatalf("diagnostics = %v", diagnostics)
	}
}

func TestScoreIsBitwiseStableAcrossCalls(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	scorer := NewLinearScorer(nil)

	first, _, err := scorer.Score(pos, startposCandidates(), ScoreOptions{Elo: 800})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// The dot product sums in schema order, so repeated calls must produce
	// identical floats, not merely close ones.
	for run := 0; run < 20; run++ {
		again, _, err := scorer.Score(pos, startposCandidates(), ScoreOptions{Elo: 800})
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		for i := range first {
			if again[i].Move != first[i].Move || again[i].HumanScore != first[i].HumanScore {
				t.Fatalf("run %d candidate %d: %v vs %v", run, i, again[i], first[i])
			}
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, ok := ParseMode(""); !ok || m != ModePractical {
		t.Fatalf("empty mode: %v %v", m, ok)
	}
	if m, ok := ParseMode("learning"); !ok || m != ModeLearning {
		t.Fatalf("learning: %v %v", m, ok)
	}
	if _, ok := ParseMode("reckless"); ok {
		t.Fatalf("unknown mode accepted")
	}
}
