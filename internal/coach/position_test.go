package coach

import (
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func TestResolveMoveReturnsTaggedMove(t *testing.T) {
	pos, err := ParsePosition("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}

	mv, err := resolveMove(pos, "e4d5")
	if err != nil {
		t.Fatalf("resolveMove: %v", err)
	}
	if mv == nil || mv.String() != "e4d5" {
		t.Fatalf("move = %v", mv)
	}
	// The resolved move must carry legality tags from move generation.
	if !mv.HasTag(nchess.Capture) {
		t.Fatalf("e4d5 should be tagged as a capture")
	}
	if enc := (nchess.AlgebraicNotation{}).Encode(pos, mv); enc != "exd5" {
		t.Fatalf("SAN = %q, want exd5", enc)
	}
}

func TestResolveMoveRejectsIllegalAndEmpty(t *testing.T) {
	pos, err := ParsePosition(StartFEN)
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	if _, err := resolveMove(pos, "e2e5"); err == nil {
		t.Fatalf("expected error for illegal move")
	}
	if _, err := resolveMove(pos, "  "); err == nil {
		t.Fatalf("expected error for empty move")
	}
}

func TestMoveSANOnStartPosition(t *testing.T) {
	pos, err := ParsePosition("startpos")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	if got := moveSAN(pos, "g1f3"); got != "Nf3" {
		t.Fatalf("moveSAN = %q, want Nf3", got)
	}
	// Unresolvable input falls back to the normalized UCI text.
	if got := moveSAN(pos, "E2E5"); got != "e2e5" {
		t.Fatalf("fallback = %q, want e2e5", got)
	}
}
