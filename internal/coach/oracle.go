package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/karu-dev/pawn-tutor/internal/uci"
	"go.uber.org/zap"
)

// Candidate is a legal move surfaced by the oracle, annotated with the
// engine's evaluation from the mover's point of view.
type Candidate struct {
	Move      string
	EvalCP    int
	Principal []string
}

// Oracle produces the top-k safe candidate moves for a position, best-first
// by the engine's own evaluation. It is the sole authority for legality.
type Oracle interface {
	TopCandidates(ctx context.Context, fen string, k int) ([]Candidate, error)
}

// EngineOracleConfig tunes the pooled engine behind the oracle.
type EngineOracleConfig struct {
	BinaryPath   string
	Threads      int
	HashMB       int
	MaxMultiPV   int
	Depth        int
	MoveTimeMS   int
	PoolCapacity int

	// Candidates evaluated below this threshold (mover's perspective, in
	// centipawns) are considered unsafe and filtered out.
	SafetyThresholdCP int
}

const (
	defaultMaxMultiPV        = 8
	defaultDepth             = 12
	defaultSafetyThresholdCP = -50
)

// EngineOracle adapts the UCI subprocess pool to the coaching pipeline. A
// failed search is retried exactly once on a fresh session; the second
// failure surfaces as ErrOracleUnavailable.
type EngineOracle struct {
	pool      *uci.Pool
	limits    uci.Limits
	maxPV     int
	threshold int
	logger    *zap.Logger

	// search runs one engine analysis; defaults to poolSearch.
	search func(ctx context.Context, fen string) (uci.SearchResponse, error)
}

func NewEngineOracle(cfg EngineOracleConfig, logger *zap.Logger) (*EngineOracle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxPV := cfg.MaxMultiPV
	if maxPV <= 0 {
		maxPV = defaultMaxMultiPV
	}
	hashMB := cfg.HashMB
	if hashMB <= 0 {
		hashMB = 64
	}
	depth := cfg.Depth
	if depth <= 0 && cfg.MoveTimeMS <= 0 {
		depth = defaultDepth
	}
	threshold := cfg.SafetyThresholdCP
	if threshold == 0 {
		threshold = defaultSafetyThresholdCP
	}

	pool, err := uci.NewPool(uci.PoolConfig{
		BinaryPath: cfg.BinaryPath,
		Options: uci.Options{
			Threads: cfg.Threads,
			HashMB:  hashMB,
			MultiPV: maxPV,
		},
		Capacity: cfg.PoolCapacity,
	})
	if err != nil {
		return nil, fmt.Errorf("init engine pool: %w", err)
	}

	o := &EngineOracle{
		pool:      pool,
		limits:    uci.Limits{Depth: depth, MoveTimeMillis: cfg.MoveTimeMS},
		maxPV:     maxPV,
		threshold: threshold,
		logger:    logger,
	}
	o.search = o.poolSearch
	return o, nil
}

func (o *EngineOracle) TopCandidates(ctx context.Context, fen string, k int) ([]Candidate, error) {
	if k <= 0 || k > o.maxPV {
		k = o.maxPV
	}

	resp, err := o.search(ctx, fen)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// One bounded retry on a fresh session, then give up.
		o.logger.Warn("engine search failed, retrying once",
			zap.Error(err),
			zap.String("fen", fen),
		)
		resp, err = o.search(ctx, fen)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
		}
	}

	if strings.TrimSpace(resp.BestMove) == "" || resp.BestMove == "(none)" || len(resp.Candidates) == 0 {
		return nil, ErrNoLegalMoves
	}

	candidates := make([]Candidate, 0, len(resp.Candidates))
	for _, c := range resp.Candidates {
		candidates = append(candidates, Candidate{
			Move:      strings.ToLower(c.Move),
			EvalCP:    c.EvalCP,
			Principal: append([]string(nil), c.Principal...),
		})
	}
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return o.filterUnsafe(candidates), nil
}

// filterUnsafe drops candidates the engine already dislikes. The best-first
// head always survives so the pipeline keeps at least one candidate.
func (o *EngineOracle) filterUnsafe(candidates []Candidate) []Candidate {
	kept := candidates[:0:len(candidates)]
	for i, c := range candidates {
		if i > 0 && c.EvalCP < o.threshold {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func (o *EngineOracle) poolSearch(ctx context.Context, fen string) (uci.SearchResponse, error) {
	session, err := o.pool.Acquire(ctx)
	if err != nil {
		return uci.SearchResponse{}, err
	}
	var searchErr error
	defer func() {
		o.pool.Release(session, searchErr)
	}()

	if searchErr = session.NewGame(ctx); searchErr != nil {
		return uci.SearchResponse{}, searchErr
	}
	var resp uci.SearchResponse
	resp, searchErr = session.Search(ctx, uci.SearchRequest{FEN: fen, Limits: o.limits})
	return resp, searchErr
}

func (o *EngineOracle) Close() error {
	if o.pool == nil {
		return nil
	}
	return o.pool.Close()
}

// IsTerminalErr reports whether err is the normal game-over outcome rather
// than a failure.
func IsTerminalErr(err error) bool {
	return errors.Is(err, ErrNoLegalMoves)
}
