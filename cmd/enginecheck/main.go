package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/karu-dev/pawn-tutor/internal/uci"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func main() {
	binary := os.Getenv("ENGINE_PATH")
	if binary == "" {
		log.Fatal("ENGINE_PATH is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session, err := uci.NewSession(ctx, binary, uci.Options{Threads: 1, HashMB: 16, MultiPV: 3})
	if err != nil {
		log.Fatalf("engine spawn error: %v", err)
	}
	defer func() { _ = session.Close() }()

	if err := session.NewGame(ctx); err != nil {
		log.Fatalf("ucinewgame error: %v", err)
	}

	start := time.Now()
	resp, err := session.Search(ctx, uci.SearchRequest{
		FEN:    startFEN,
		Limits: uci.Limits{Depth: 10},
	})
	if err != nil {
		log.Fatalf("search error: %v", err)
	}

	log.Printf("engine ok: bestmove=%s lines=%d elapsed=%s", resp.BestMove, len(resp.Candidates), time.Since(start).Round(time.Millisecond))
	for i, c := range resp.Candidates {
		fmt.Printf("  %d. %s eval=%+dcp pv=%v\n", i+1, c.Move, c.EvalCP, c.Principal)
	}
}
