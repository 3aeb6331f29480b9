package coachbuilder

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	corecoach "github.com/karu-dev/pawn-tutor/internal/coach"
	"github.com/karu-dev/pawn-tutor/internal/config"
	"github.com/karu-dev/pawn-tutor/internal/msgcat"
	"github.com/karu-dev/pawn-tutor/internal/service/cache"
	svccoach "github.com/karu-dev/pawn-tutor/internal/service/coach"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Deps struct {
	Service  *svccoach.Service
	Oracle   *corecoach.EngineOracle
	Cache    *cache.CacheService
	Repo     svccoach.Repository
	Renderer svccoach.BoardRenderer
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(cfg.EnginePath) == "" {
		return nil, fmt.Errorf("ENGINE_PATH is required for the candidate oracle")
	}

	oracle, err := corecoach.NewEngineOracle(corecoach.EngineOracleConfig{
		BinaryPath:        cfg.EnginePath,
		Threads:           cfg.EngineThreads,
		HashMB:            cfg.EngineHashMB,
		MaxMultiPV:        cfg.EngineMultiPV,
		Depth:             cfg.EngineDepth,
		MoveTimeMS:        cfg.EngineMoveTimeMS,
		PoolCapacity:      cfg.MaxConcurrent,
		SafetyThresholdCP: cfg.SafetyMarginCP,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init oracle: %w", err)
	}

	weights := corecoach.DefaultWeights()
	if strings.TrimSpace(cfg.WeightsPath) != "" {
		weights, err = corecoach.LoadWeights(cfg.WeightsPath)
		if err != nil {
			return nil, fmt.Errorf("load model weights: %w", err)
		}
	}

	catalog, err := msgcat.New(cfg.MessageOverride)
	if err != nil {
		return nil, fmt.Errorf("load message catalog: %w", err)
	}

	suggester, err := corecoach.NewSuggester(oracle, corecoach.NewLinearScorer(weights), corecoach.NewExplainer(catalog), logger)
	if err != nil {
		return nil, fmt.Errorf("init suggester: %w", err)
	}
	suggester.SetDefaultCandidateCount(cfg.CandidateCount)

	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required for coach sessions/cache")
	}
	cconf, err := parseRedisURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	cacheSvc, err := cache.NewCacheService(*cconf, logger)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	// Repository: Postgres when configured, in-memory otherwise so a single
	// binary still runs without a database.
	var repo svccoach.Repository
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		repo = svccoach.NewRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory game repository")
		repo = svccoach.NewMemoryRepository()
	}

	mode, ok := corecoach.ParseMode(strings.TrimSpace(cfg.DefaultMode))
	if !ok {
		return nil, fmt.Errorf("invalid COACH_DEFAULT_MODE %q", cfg.DefaultMode)
	}

	renderer := svccoach.NewSVGBoardRenderer()
	svcCfg := svccoach.Config{
		DefaultMode:  mode,
		DefaultElo:   cfg.DefaultElo,
		SessionTTL:   time.Duration(cfg.SessionTTLSec) * time.Second,
		HistoryLimit: cfg.HistoryLimit,
	}

	service, err := svccoach.NewService(suggester, oracle, cacheSvc, repo, renderer, catalog, svcCfg, logger)
	if err != nil {
		return nil, err
	}

	return &Deps{Service: service, Oracle: oracle, Cache: cacheSvc, Repo: repo, Renderer: renderer}, nil
}

func (d *Deps) Close() error {
	var firstErr error
	if d.Oracle != nil {
		if err := d.Oracle.Close(); err != nil {
			firstErr = err
		}
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func parseRedisURL(raw string) (*cache.CacheConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	host := u.Hostname()
	portStr := u.Port()
	if portStr == "" {
		portStr = "6379"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	db := 0
	if u.Path != "" {
		p := strings.TrimPrefix(u.Path, "/")
		if p != "" {
			if n, err := strconv.Atoi(p); err == nil {
				db = n
			}
		}
	}
	pass, _ := u.User.Password()
	return &cache.CacheConfig{Host: host, Port: port, Password: pass, DB: db}, nil
}
