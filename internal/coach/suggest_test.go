package coach

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/karu-dev/pawn-tutor/internal/msgcat"
)

type stubOracle struct {
	candidates []Candidate
	err        error
	calls      int
	lastFEN    string
	lastK      int
}

func (s *stubOracle) TopCandidates(_ context.Context, fen string, k int) ([]Candidate, error) {
	s.calls++
	s.lastFEN = fen
	s.lastK = k
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func newTestSuggester(t *testing.T, oracle Oracle) *Suggester {
	t.Helper()
	catalog, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	s, err := NewSuggester(oracle, NewLinearScorer(nil), NewExplainer(catalog), nil)
	if err != nil {
		t.Fatalf("NewSuggester: %v", err)
	}
	return s
}

func TestSuggestPicksDevelopingKnight(t *testing.T) {
	oracle := &stubOracle{candidates: startposCandidates()}
	s := newTestSuggester(t, oracle)

	got, err := s.Suggest(context.Background(), SuggestRequest{FEN: StartFEN, Elo: 800})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if got.Chosen.Move != "g1f3" {
		t.Fatalf("chosen = %s, want g1f3", got.Chosen.Move)
	}
	if got.ChosenSAN != "Nf3" {
		t.Fatalf("chosen SAN = %s, want Nf3", got.ChosenSAN)
	}
	if got.Explanation.Reason != ReasonDevelopment {
		t.Fatalf("reason = %s, want development", got.Explanation.Reason)
	}
	if got.Explanation.Text == "" {
		t.Fatalf("empty explanation text")
	}
	if len(got.Candidates) != 5 || got.Candidates[0].Rank != 1 {
		t.Fatalf("candidates = %+v", got.Candidates)
	}
	if oracle.calls != 1 {
		t.Fatalf("oracle calls = %d", oracle.calls)
	}
	if oracle.lastK != DefaultCandidateCount {
		t.Fatalf("default k = %d", oracle.lastK)
	}
}

func TestSuggestIsDeterministic(t *testing.T) {
	oracle := &stubOracle{candidates: startposCandidates()}
	s := newTestSuggester(t, oracle)
	req := SuggestRequest{FEN: StartFEN, K: 5, Elo: 800, Mode: ModePractical}

	first, err := s.Suggest(context.Background(), req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := s.Suggest(context.Background(), req)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Chosen.Move != second.Chosen.Move || first.Explanation != second.Explanation {
		t.Fatalf("outputs differ: %+v vs %+v", first, second)
	}
	for i := range first.Candidates {
		if first.Candidates[i].Move != second.Candidates[i].Move ||
			first.Candidates[i].HumanScore != second.Candidates[i].HumanScore {
			t.Fatalf("candidate %d differs", i)
		}
	}
}

func TestSuggestTerminalPositionSkipsOracle(t *testing.T) {
	oracle := &stubOracle{candidates: startposCandidates()}
	s := newTestSuggester(t, oracle)

	// Fool's mate: white is checkmated and has no legal moves.
	_, err := s.Suggest(context.Background(), SuggestRequest{
		FEN: "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
	})
	if !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("err = %v, want ErrNoLegalMoves", err)
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle was called %d times for a terminal position", oracle.calls)
	}
}

func TestSuggestRejectsMalformedFENBeforeOracle(t *testing.T) {
	oracle := &stubOracle{candidates: startposCandidates()}
	s := newTestSuggester(t, oracle)

	_, err := s.Suggest(context.Background(), SuggestRequest{FEN: "not a fen"})
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("err = %v, want ErrEncoding", err)
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle was called for malformed input")
	}
}

func TestSuggestOracleFailureSurfacesAndRecovers(t *testing.T) {
	oracle := &stubOracle{err: fmt.Errorf("%w: engine gone", ErrOracleUnavailable)}
	s := newTestSuggester(t, oracle)

	_, err := s.Suggest(context.Background(), SuggestRequest{FEN: StartFEN})
	if !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("err = %v, want ErrOracleUnavailable", err)
	}

	// A later call with a healthy oracle is unaffected.
	oracle.err = nil
	oracle.candidates = startposCandidates()
	if _, err := s.Suggest(context.Background(), SuggestRequest{FEN: StartFEN}); err != nil {
		t.Fatalf("recovered call failed: %v", err)
	}
}

func TestSuggestPassesNormalizedFENToOracle(t *testing.T) {
	oracle := &stubOracle{candidates: startposCandidates()}
	s := newTestSuggester(t, oracle)

	if _, err := s.Suggest(context.Background(), SuggestRequest{FEN: "startpos", K: 3}); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if oracle.lastFEN != StartFEN {
		t.Fatalf("oracle FEN = %q", oracle.lastFEN)
	}
	if oracle.lastK != 3 {
		t.Fatalf("oracle k = %d", oracle.lastK)
	}
}

func TestSuggestUsesConfiguredCandidateCount(t *testing.T) {
	oracle := &stubOracle{candidates: startposCandidates()}
	s := newTestSuggester(t, oracle)
	s.SetDefaultCandidateCount(3)

	if _, err := s.Suggest(context.Background(), SuggestRequest{FEN: StartFEN}); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if oracle.lastK != 3 {
		t.Fatalf("oracle k = %d, want 3", oracle.lastK)
	}

	// Non-positive overrides are ignored.
	s.SetDefaultCandidateCount(0)
	if _, err := s.Suggest(context.Background(), SuggestRequest{FEN: StartFEN}); err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if oracle.lastK != 3 {
		t.Fatalf("oracle k = %d after zero override, want 3", oracle.lastK)
	}
}

func TestSuggestWhyNotAndTip(t *testing.T) {
	oracle := &stubOracle{candidates: startposCandidates()}
	s := newTestSuggester(t, oracle)

	got, err := s.Suggest(context.Background(), SuggestRequest{FEN: StartFEN, Mode: ModeLearning, Elo: 600})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	// Quiet opening moves yield no rejection reasons, but the call itself
	// must not fail.
	_ = s.WhyNot(StartFEN, got.Candidates[1:], 600)
	if s.LearningTip() == "" {
		t.Fatalf("empty learning tip")
	}
}

func TestPhaseTrackerPanicsOnIllegalTransition(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	tracker := &phaseTracker{current: phaseDone}
	tracker.to(phaseScoring)
}
