package uci

import (
	"strings"
	"testing"
)

func TestParseInfoMultiPV(t *testing.T) {
	line := "info depth 12 seldepth 18 multipv 2 score cp 34 nodes 120000 pv g1f3 g8f6 d2d4"
	idx, cand, ok := parseInfo(line)
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if idx != 2 {
		t.Fatalf("multipv = %d, want 2", idx)
	}
	if cand.Move != "g1f3" {
		t.Fatalf("move = %s, want g1f3", cand.Move)
	}
	if cand.EvalCP != 34 {
		t.Fatalf("eval = %d, want 34", cand.EvalCP)
	}
	if len(cand.Principal) != 3 {
		t.Fatalf("principal length = %d, want 3", len(cand.Principal))
	}
}

func TestParseInfoMateScore(t *testing.T) {
	idx, cand, ok := parseInfo("info depth 10 multipv 1 score mate 3 pv d1h5")
	if !ok || idx != 1 {
		t.Fatalf("parse failed: ok=%v idx=%d", ok, idx)
	}
	if cand.EvalCP != mateValueCP {
		t.Fatalf("mate eval = %d, want %d", cand.EvalCP, mateValueCP)
	}
	_, cand, ok = parseInfo("info depth 10 multipv 1 score mate -2 pv e8f8")
	if !ok || cand.EvalCP != -mateValueCP {
		t.Fatalf("negative mate eval = %d, want %d", cand.EvalCP, -mateValueCP)
	}
}

func TestParseInfoIgnoresLinesWithoutPV(t *testing.T) {
	if _, _, ok := parseInfo("info depth 5 currmove e2e4 currmovenumber 1"); ok {
		t.Fatalf("expected lines without pv to be ignored")
	}
}

func TestBuildPositionCommand(t *testing.T) {
	if got := buildPositionCommand(""); got != "position startpos\n" {
		t.Fatalf("empty fen: %q", got)
	}
	if got := buildPositionCommand("startpos"); got != "position startpos\n" {
		t.Fatalf("startpos: %q", got)
	}
	fen := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	if got := buildPositionCommand(fen); !strings.HasPrefix(got, "position fen "+fen) {
		t.Fatalf("fen command: %q", got)
	}
}

func TestBuildGoTokens(t *testing.T) {
	tokens, err := buildGoTokens(Limits{Depth: 12, MoveTimeMillis: 500})
	if err != nil {
		t.Fatalf("buildGoTokens: %v", err)
	}
	got := strings.Join(tokens, " ")
	if got != "go depth 12 movetime 500" {
		t.Fatalf("tokens = %q", got)
	}
	if _, err := buildGoTokens(Limits{}); err == nil {
		t.Fatalf("expected error for empty limits")
	}
}

func TestCollapseCandidatesOrdersByMultiPV(t *testing.T) {
	m := map[int]Candidate{
		3: {Move: "c2c4"},
		1: {Move: "e2e4"},
		2: {Move: "d2d4"},
	}
	out := collapseCandidates(m)
	if len(out) != 3 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].Move != "e2e4" || out[1].Move != "d2d4" || out[2].Move != "c2c4" {
		t.Fatalf("unexpected order: %+v", out)
	}
}
