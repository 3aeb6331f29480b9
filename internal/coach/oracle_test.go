package coach

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/karu-dev/pawn-tutor/internal/uci"
	"go.uber.org/zap"
)

func newSearchStubOracle(search func(ctx context.Context, fen string) (uci.SearchResponse, error)) *EngineOracle {
	return &EngineOracle{
		maxPV:     5,
		threshold: -50,
		logger:    zap.NewNop(),
		search:    search,
	}
}

func TestTopCandidatesRetriesExactlyOnce(t *testing.T) {
	attempts := 0
	o := newSearchStubOracle(func(context.Context, string) (uci.SearchResponse, error) {
		attempts++
		return uci.SearchResponse{}, fmt.Errorf("engine crashed")
	})

	_, err := o.TopCandidates(context.Background(), StartFEN, 3)
	if !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("err = %v, want ErrOracleUnavailable", err)
	}
	if attempts != 2 {
		t.Fatalf("search attempts = %d, want 2", attempts)
	}
}

func TestTopCandidatesRecoversOnRetry(t *testing.T) {
	attempts := 0
	o := newSearchStubOracle(func(context.Context, string) (uci.SearchResponse, error) {
		attempts++
		if attempts == 1 {
			return uci.SearchResponse{}, fmt.Errorf("engine crashed")
		}
		return uci.SearchResponse{
			BestMove: "e2e4",
			Candidates: []uci.Candidate{
				{Move: "e2e4", EvalCP: 30},
				{Move: "g1f3", EvalCP: 25},
			},
		}, nil
	})

	got, err := o.TopCandidates(context.Background(), StartFEN, 3)
	if err != nil {
		t.Fatalf("TopCandidates: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("search attempts = %d, want 2", attempts)
	}
	if len(got) != 2 || got[0].Move != "e2e4" {
		t.Fatalf("candidates = %v", got)
	}
}

func TestTopCandidatesDoesNotRetryOnCancel(t *testing.T) {
	attempts := 0
	ctx, cancel := context.WithCancel(context.Background())
	o := newSearchStubOracle(func(context.Context, string) (uci.SearchResponse, error) {
		attempts++
		cancel()
		return uci.SearchResponse{}, context.Canceled
	})

	_, err := o.TopCandidates(ctx, StartFEN, 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Fatalf("search attempts = %d, want 1", attempts)
	}
}

func TestTopCandidatesTerminalBestMove(t *testing.T) {
	o := newSearchStubOracle(func(context.Context, string) (uci.SearchResponse, error) {
		return uci.SearchResponse{BestMove: "(none)"}, nil
	})
	_, err := o.TopCandidates(context.Background(), StartFEN, 3)
	if !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("err = %v, want ErrNoLegalMoves", err)
	}
}

func TestFilterUnsafeDropsBelowThreshold(t *testing.T) {
	o := &EngineOracle{threshold: -50}
	in := []Candidate{
		{Move: "e2e4", EvalCP: 30},
		{Move: "g1f3", EvalCP: -20},
		{Move: "g2g4", EvalCP: -80},
		{Move: "f2f3", EvalCP: -200},
	}
	out := o.filterUnsafe(in)
	if len(out) != 2 {
		t.Fatalf("kept %d candidates, want 2", len(out))
	}
	if out[0].Move != "e2e4" || out[1].Move != "g1f3" {
		t.Fatalf("kept = %v", out)
	}
}

func TestFilterUnsafeAlwaysKeepsHead(t *testing.T) {
	// Even a losing position keeps the engine's best line.
	o := &EngineOracle{threshold: -50}
	out := o.filterUnsafe([]Candidate{
		{Move: "e1d1", EvalCP: -300},
		{Move: "e1f1", EvalCP: -450},
	})
	if len(out) != 1 || out[0].Move != "e1d1" {
		t.Fatalf("kept = %v", out)
	}
}

func TestIsTerminalErr(t *testing.T) {
	if !IsTerminalErr(ErrNoLegalMoves) {
		t.Fatalf("ErrNoLegalMoves is terminal")
	}
	if IsTerminalErr(ErrOracleUnavailable) {
		t.Fatalf("ErrOracleUnavailable is not terminal")
	}
}
