package coach

import (
	"testing"

	"github.com/karu-dev/pawn-tutor/internal/msgcat"
)

func newTestExplainer(t *testing.T) *Explainer {
	t.Helper()
	catalog, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	return NewExplainer(catalog)
}

func explainAt(t *testing.T, fen, moveUCI string) Explanation {
	t.Helper()
	pos, err := ParsePosition(fen)
	if err != nil {
		t.Fatalf("ParsePosition(%q): %v", fen, err)
	}
	exp, err := newTestExplainer(t).Explain(pos, moveUCI)
	if err != nil {
		t.Fatalf("Explain(%s): %v", moveUCI, err)
	}
	if exp.Text == "" {
		t.Fatalf("empty explanation for %s", moveUCI)
	}
	return exp
}

func TestExplainCheckWinsPriority(t *testing.T) {
	// 1.e4 d6 2...e5, then Bb5 is check. The bishop also develops, so this
	// confirms check outranks development.
	exp := explainAt(t, "rnbqkbnr/ppp2ppp/3p4/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 3", "f1b5")
	if exp.Reason != ReasonCheck {
		t.Fatalf("reason = %s, want check", exp.Reason)
	}
}

func TestExplainCapture(t *testing.T) {
	exp := explainAt(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2", "e4d5")
	if exp.Reason != ReasonCapture {
		t.Fatalf("reason = %s, want capture", exp.Reason)
	}
}

func TestExplainEscape(t *testing.T) {
	// The d4 knight is en prise to the e5 pawn; retreating to b3 saves it.
	exp := explainAt(t, "rnbqkbnr/pppp1ppp/8/4p3/3N4/8/PPPPPPPP/RNBQKB1R w KQkq - 0 3", "d4b3")
	if exp.Reason != ReasonEscape {
		t.Fatalf("reason = %s, want escape", exp.Reason)
	}
}

func TestExplainDevelopment(t *testing.T) {
	exp := explainAt(t, StartFEN, "g1f3")
	if exp.Reason != ReasonDevelopment {
		t.Fatalf("reason = %s, want development", exp.Reason)
	}
}

func TestExplainCenter(t *testing.T) {
	exp := explainAt(t, StartFEN, "e2e4")
	if exp.Reason != ReasonCenter {
		t.Fatalf("reason = %s, want center", exp.Reason)
	}
}

func TestExplainDefault(t *testing.T) {
	exp := explainAt(t, StartFEN, "a2a3")
	if exp.Reason != ReasonDefault {
		t.Fatalf("reason = %s, want default", exp.Reason)
	}
}

func TestExplainNeverEmptyForLegalMoves(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	explainer := newTestExplainer(t)
	for _, mv := range pos.ValidMoves() {
		exp, err := explainer.Explain(pos, mv.String())
		if err != nil {
			t.Fatalf("Explain(%s): %v", mv.String(), err)
		}
		if exp.Text == "" || exp.Reason == "" {
			t.Fatalf("empty output for %s", mv.String())
		}
	}
}

func TestExplainRejectsIllegalMove(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	if _, err := newTestExplainer(t).Explain(pos, "e2e5"); err == nil {
		t.Fatalf("expected error for illegal move")
	}
}

func TestWhyNotFlagsHangingAndRisk(t *testing.T) {
	// Nd4 walks into the e5 pawn with no defender.
	pos, err := ParsePosition("rnbqkbnr/pppp1ppp/8/4p3/8/8/PPPPNPPP/RNBQKB1R w KQkq - 0 3")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	rejected := ScoredMove{
		Candidate: Candidate{Move: "e2d4"},
		Risk:      RiskBlunder,
	}
	reasons := newTestExplainer(t).WhyNot(pos, rejected, 800)
	if len(reasons) < 2 {
		t.Fatalf("expected hanging and risk reasons, got %v", reasons)
	}
}

func TestWhyNotQuietMoveHasNoReasons(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	rejected := ScoredMove{Candidate: Candidate{Move: "g1f3"}, Risk: RiskNone}
	if reasons := newTestExplainer(t).WhyNot(pos, rejected, 800); len(reasons) != 0 {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
}

func TestLearningTipNonEmpty(t *testing.T) {
	if tip := newTestExplainer(t).LearningTip(); tip == "" {
		t.Fatalf("empty learning tip")
	}
}
