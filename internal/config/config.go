package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// AppConfig carries everything the coach server reads from the environment.
type AppConfig struct {
	HTTPAddr string

	EnginePath       string
	EngineThreads    int
	EngineHashMB     int
	EngineDepth      int
	EngineMoveTimeMS int
	EngineMultiPV    int

	RedisURL    string
	DatabaseURL string

	DefaultMode     string
	DefaultElo      int
	CandidateCount  int
	SessionTTLSec   int
	HistoryLimit    int
	MaxConcurrent   int
	SafetyMarginCP  int
	WeightsPath     string
	MessageOverride string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:       ":8080",
		EngineThreads:  2,
		EngineHashMB:   64,
		EngineDepth:    12,
		EngineMultiPV:  8,
		DefaultMode:    "practical",
		DefaultElo:     800,
		CandidateCount: 5,
		SessionTTLSec:  3600,
		HistoryLimit:   10,
		MaxConcurrent:  200,
		SafetyMarginCP: -50,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}

	cfg.EnginePath = strings.TrimSpace(os.Getenv("ENGINE_PATH"))
	applyInt(&cfg.EngineThreads, "ENGINE_THREADS")
	applyInt(&cfg.EngineHashMB, "ENGINE_HASH_MB")
	applyInt(&cfg.EngineDepth, "ENGINE_DEPTH")
	applyInt(&cfg.EngineMoveTimeMS, "ENGINE_MOVETIME_MS")
	applyInt(&cfg.EngineMultiPV, "ENGINE_MULTIPV")

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("COACH_DEFAULT_MODE")); v != "" {
		cfg.DefaultMode = v
	}
	applyInt(&cfg.DefaultElo, "COACH_DEFAULT_ELO")
	applyInt(&cfg.CandidateCount, "COACH_CANDIDATES")
	applyInt(&cfg.SessionTTLSec, "SESSION_TTL") // seconds
	applyInt(&cfg.HistoryLimit, "HISTORY_LIMIT")
	applyInt(&cfg.MaxConcurrent, "MAX_CONCURRENT_SESSIONS")
	if v := strings.TrimSpace(os.Getenv("SAFETY_MARGIN_CP")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n < 0 {
			cfg.SafetyMarginCP = n
		}
	}
	cfg.WeightsPath = strings.TrimSpace(os.Getenv("MODEL_WEIGHTS_PATH"))
	cfg.MessageOverride = strings.TrimSpace(os.Getenv("MESSAGE_OVERRIDE_DIR"))

	if cfg.EnginePath == "" {
		return nil, errors.New("ENGINE_PATH is required")
	}

	return cfg, nil
}

func applyInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
