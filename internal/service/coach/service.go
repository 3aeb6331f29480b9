package coach

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	corecoach "github.com/karu-dev/pawn-tutor/internal/coach"
	"github.com/karu-dev/pawn-tutor/internal/domain"
	"github.com/karu-dev/pawn-tutor/internal/msgcat"
	"github.com/karu-dev/pawn-tutor/internal/service/cache"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound   = errors.New("coach session not found")
	ErrSessionInProgress = errors.New("coach session already in progress")
	ErrInvalidMove       = errors.New("invalid move")
	ErrGameFinished      = errors.New("game already finished")
	ErrGameNotFound      = errors.New("coach game not found")
	ErrProfileNotFound   = errors.New("learner profile not found")
)

const (
	profileCacheTTL = 6 * time.Hour
	maxHistoryLimit = 50

	minElo = 400
	maxElo = 2200
)

// Centipawn-loss bands for grading a played move against the engine's best
// candidate.
const (
	goodLossCP    = 30
	passiveLossCP = 70
	mistakeLossCP = 150
)

type Grade string

const (
	GradeGood    Grade = "good"
	GradePassive Grade = "passive"
	GradeMistake Grade = "mistake"
	GradeBlunder Grade = "blunder"
)

// Adviser is the suggestion pipeline the session layer delegates to.
// *corecoach.Suggester satisfies it.
type Adviser interface {
	Suggest(ctx context.Context, req corecoach.SuggestRequest) (*corecoach.Suggestion, error)
	WhyNot(fen string, rejected []corecoach.ScoredMove, elo int) []string
	LearningTip() string
}

type SessionMeta struct {
	Learner string
}

type sessionIdentity struct {
	LearnerHash string
}

type Config struct {
	DefaultMode  corecoach.Mode
	DefaultElo   int
	SessionTTL   time.Duration
	HistoryLimit int
}

type Service struct {
	adviser  Adviser
	oracle   corecoach.Oracle
	cache    *cache.CacheService
	repo     Repository
	renderer BoardRenderer
	catalog  *msgcat.Catalog
	cfg      Config
	logger   *zap.Logger
}

type sessionPayload struct {
	SessionUUID     string    `json:"session_uuid"`
	LearnerHash     string    `json:"learner_hash"`
	Mode            string    `json:"mode"`
	Elo             int       `json:"elo"`
	Moves           []string  `json:"moves"`
	Mistakes        int       `json:"mistakes"`
	Blunders        int       `json:"blunders"`
	SuggestionsUsed int       `json:"suggestions_used"`
	StartedAt       time.Time `json:"started_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type SessionState struct {
	SessionUUID     string
	LearnerHash     string
	Mode            corecoach.Mode
	Elo             int
	Moves           []string
	MovesSAN        []string
	FEN             string
	Turn            string
	MoveCount       int
	Outcome         nchess.Outcome
	OutcomeMethod   nchess.Method
	Mistakes        int
	Blunders        int
	SuggestionsUsed int
	StartedAt       time.Time
	UpdatedAt       time.Time
	BoardImage      []byte
	Profile         *domain.LearnerProfile
}

// MoveFeedback grades the learner's played move against the engine's best
// candidate at the same position.
type MoveFeedback struct {
	PlayedSAN string
	PlayedUCI string
	Grade     Grade
	LossCP    int
	BestUCI   string
	BestSAN   string
	Text      string
}

type MoveSummary struct {
	State    *SessionState
	Feedback MoveFeedback
	Finished bool
	GameID   int64
	Profile  *domain.LearnerProfile
}

// Advice is a session-scoped suggestion with optional learning-mode extras.
type Advice struct {
	Suggestion *corecoach.Suggestion
	WhyNot     []string
	Tip        string
}

func NewService(adviser Adviser, oracle corecoach.Oracle, cacheSvc *cache.CacheService, repo Repository, renderer BoardRenderer, catalog *msgcat.Catalog, cfg Config, logger *zap.Logger) (*Service, error) {
	if adviser == nil {
		return nil, fmt.Errorf("adviser is required")
	}
	if oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if cacheSvc == nil {
		return nil, fmt.Errorf("cache service is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("board renderer is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("message catalog is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be greater than 0")
	}
	if _, ok := corecoach.ParseMode(string(cfg.DefaultMode)); !ok {
		return nil, fmt.Errorf("invalid default mode %q", cfg.DefaultMode)
	}
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = corecoach.ModePractical
	}
	if cfg.DefaultElo <= 0 {
		cfg.DefaultElo = 800
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > maxHistoryLimit {
		cfg.HistoryLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		adviser:  adviser,
		oracle:   oracle,
		cache:    cacheSvc,
		repo:     repo,
		renderer: renderer,
		catalog:  catalog,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func (s *Service) StartSession(ctx context.Context, meta SessionMeta, mode string, elo int) (*SessionState, error) {
	identity, err := deriveIdentity(meta)
	if err != nil {
		return nil, err
	}

	existing, err := s.loadSession(ctx, identity)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		game, err := replaySession(existing)
		if err != nil {
			return nil, err
		}
		state := s.stateFromGame(existing, game)
		if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
			state.Profile = profile
		}
		s.attachBoardImage(ctx, state, game.Position(), nil)
		return state, ErrSessionInProgress
	}

	trimmedMode := strings.ToLower(strings.TrimSpace(mode))
	chosenMode, ok := corecoach.ParseMode(trimmedMode)
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if trimmedMode == "" {
		chosenMode = s.cfg.DefaultMode
	}
	if elo <= 0 {
		elo = s.cfg.DefaultElo
	}
	elo = clampElo(elo)

	payload := &sessionPayload{
		SessionUUID: uuid.NewString(),
		LearnerHash: identity.LearnerHash,
		Mode:        string(chosenMode),
		Elo:         elo,
		Moves:       []string{},
		StartedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.saveSession(ctx, identity, payload); err != nil {
		return nil, err
	}

	game := nchess.NewGame()
	state := s.stateFromGame(payload, game)
	s.attachBoardImage(ctx, state, game.Position(), nil)
	if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
		state.Profile = profile
	}
	return state, nil
}

func (s *Service) Status(ctx context.Context, meta SessionMeta) (*SessionState, error) {
	identity, err := deriveIdentity(meta)
	if err != nil {
		return nil, err
	}
	payload, err := s.loadSession(ctx, identity)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}
	game, err := replaySession(payload)
	if err != nil {
		return nil, err
	}
	state := s.stateFromGame(payload, game)
	if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
		state.Profile = profile
	}
	s.attachBoardImage(ctx, state, game.Position(), nil)
	return state, nil
}

// Play applies the learner's move, grades it against the engine's best
// candidate, and persists the game when it ends.
func (s *Service) Play(ctx context.Context, meta SessionMeta, moveInput string) (*MoveSummary, error) {
	moveText := strings.TrimSpace(moveInput)
	if moveText == "" {
		return nil, ErrInvalidMove
	}

	identity, err := deriveIdentity(meta)
	if err != nil {
		return nil, err
	}
	payload, err := s.loadSession(ctx, identity)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}

	game, err := replaySession(payload)
	if err != nil {
		return nil, err
	}
	if game.Outcome() != nchess.NoOutcome {
		return nil, ErrGameFinished
	}

	notationSAN := nchess.AlgebraicNotation{}
	notationUCI := nchess.UCINotation{}
	posBefore := game.Position()
	move, err := notationSAN.Decode(posBefore, moveText)
	if err != nil {
		move, err = notationUCI.Decode(posBefore, strings.ToLower(moveText))
		if err != nil {
			return nil, ErrInvalidMove
		}
	}

	playedSAN := notationSAN.Encode(posBefore, move)
	playedUCI := strings.ToLower(notationUCI.Encode(posBefore, move))

	feedback := s.gradeMove(ctx, posBefore, playedUCI)
	feedback.PlayedSAN = playedSAN
	feedback.PlayedUCI = playedUCI

	if err := game.Move(move, nil); err != nil {
		return nil, ErrInvalidMove
	}
	payload.Moves = append(payload.Moves, playedUCI)
	payload.UpdatedAt = time.Now()
	switch feedback.Grade {
	case GradeMistake:
		payload.Mistakes++
	case GradeBlunder:
		payload.Blunders++
	}

	state := s.stateFromGame(payload, game)
	highlight := &MoveHighlight{From: move.S1(), To: move.S2()}
	s.attachBoardImage(ctx, state, game.Position(), highlight)

	summary := &MoveSummary{
		State:    state,
		Feedback: s.renderFeedback(feedback, posBefore, state),
		Finished: state.Outcome != nchess.NoOutcome,
	}

	if summary.Finished {
		gameID, profile, persistErr := s.persistFinishedGame(ctx, identity, payload, game)
		if persistErr != nil {
			return nil, persistErr
		}
		summary.GameID = gameID
		summary.Profile = profile
		state.Profile = profile
		if err := s.deleteSession(ctx, identity); err != nil {
			s.logger.Warn("failed to delete finished coach session", zap.Error(err))
		}
		return summary, nil
	}

	if err := s.saveSession(ctx, identity, payload); err != nil {
		return nil, err
	}
	return summary, nil
}

// Suggest runs the full coaching pipeline on the session's current position.
func (s *Service) Suggest(ctx context.Context, meta SessionMeta) (*Advice, error) {
	identity, err := deriveIdentity(meta)
	if err != nil {
		return nil, err
	}
	payload, err := s.loadSession(ctx, identity)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}
	game, err := replaySession(payload)
	if err != nil {
		return nil, err
	}
	if game.Outcome() != nchess.NoOutcome {
		return nil, ErrGameFinished
	}

	mode, _ := corecoach.ParseMode(payload.Mode)
	suggestion, err := s.adviser.Suggest(ctx, corecoach.SuggestRequest{
		FEN:  game.Position().String(),
		Mode: mode,
		Elo:  payload.Elo,
	})
	if err != nil {
		return nil, err
	}

	payload.SuggestionsUsed++
	payload.UpdatedAt = time.Now()
	if err := s.saveSession(ctx, identity, payload); err != nil {
		return nil, err
	}

	advice := &Advice{Suggestion: suggestion}
	if mode == corecoach.ModeLearning {
		if len(suggestion.Candidates) > 1 {
			advice.WhyNot = s.adviser.WhyNot(game.Position().String(), suggestion.Candidates[1:], payload.Elo)
		}
		advice.Tip = s.adviser.LearningTip()
	}
	return advice, nil
}

// SuggestPosition coaches a standalone position without session state.
func (s *Service) SuggestPosition(ctx context.Context, fen, mode string, elo, k int) (*Advice, error) {
	trimmedMode := strings.ToLower(strings.TrimSpace(mode))
	parsedMode, ok := corecoach.ParseMode(trimmedMode)
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if trimmedMode == "" {
		parsedMode = s.cfg.DefaultMode
	}
	if elo <= 0 {
		elo = s.cfg.DefaultElo
	}

	suggestion, err := s.adviser.Suggest(ctx, corecoach.SuggestRequest{
		FEN:  fen,
		K:    k,
		Mode: parsedMode,
		Elo:  clampElo(elo),
	})
	if err != nil {
		return nil, err
	}
	advice := &Advice{Suggestion: suggestion}
	if parsedMode == corecoach.ModeLearning {
		if len(suggestion.Candidates) > 1 {
			advice.WhyNot = s.adviser.WhyNot(fen, suggestion.Candidates[1:], elo)
		}
		advice.Tip = s.adviser.LearningTip()
	}
	return advice, nil
}

// End closes the session early and persists it as abandoned.
func (s *Service) End(ctx context.Context, meta SessionMeta) (*SessionState, error) {
	identity, err := deriveIdentity(meta)
	if err != nil {
		return nil, err
	}
	payload, err := s.loadSession(ctx, identity)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}
	game, err := replaySession(payload)
	if err != nil {
		return nil, err
	}
	payload.UpdatedAt = time.Now()

	state := s.stateFromGame(payload, game)
	s.attachBoardImage(ctx, state, game.Position(), nil)

	_, profile, persistErr := s.persistFinishedGame(ctx, identity, payload, game)
	if persistErr != nil {
		return nil, persistErr
	}
	state.Profile = profile

	if err := s.deleteSession(ctx, identity); err != nil {
		s.logger.Warn("failed to delete coach session after end", zap.Error(err))
	}
	return state, nil
}

func (s *Service) History(ctx context.Context, meta SessionMeta, limit int) ([]*domain.CoachGame, error) {
	identity, err := deriveIdentity(meta)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	return s.repo.GetRecentGames(ctx, identity.LearnerHash, limit)
}

func (s *Service) Game(ctx context.Context, meta SessionMeta, id int64) (*domain.CoachGame, error) {
	identity, err := deriveIdentity(meta)
	if err != nil {
		return nil, err
	}
	game, err := s.repo.GetGame(ctx, id, identity.LearnerHash)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (s *Service) Profile(ctx context.Context, meta SessionMeta) (*domain.LearnerProfile, error) {
	identity, err := deriveIdentity(meta)
	if err != nil {
		return nil, err
	}
	profile, err := s.fetchProfile(ctx, identity, true)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// UpdatePreferences stores the learner's default mode and Elo band.
func (s *Service) UpdatePreferences(ctx context.Context, meta SessionMeta, mode string, elo int) (*domain.LearnerProfile, error) {
	identity, err := deriveIdentity(meta)
	if err != nil {
		return nil, err
	}
	target, ok := corecoach.ParseMode(strings.ToLower(strings.TrimSpace(mode)))
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	profile, err := s.fetchProfile(ctx, identity, false)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	now := time.Now()
	if profile == nil {
		profile = &domain.LearnerProfile{
			LearnerHash: identity.LearnerHash,
			Elo:         s.cfg.DefaultElo,
			CreatedAt:   now,
		}
	}
	profile.PreferredMode = string(target)
	if elo > 0 {
		profile.Elo = clampElo(elo)
	}
	profile.UpdatedAt = now

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	s.cacheProfile(ctx, identity, profile)
	return profile, nil
}

// gradeMove asks the oracle for the candidate set at pos and bands the
// played move by its centipawn loss. Oracle failure degrades to an ungraded
// good move rather than blocking play.
func (s *Service) gradeMove(ctx context.Context, pos *nchess.Position, playedUCI string) MoveFeedback {
	feedback := MoveFeedback{Grade: GradeGood}

	candidates, err := s.oracle.TopCandidates(ctx, pos.String(), 0)
	if err != nil || len(candidates) == 0 {
		if err != nil && !corecoach.IsTerminalErr(err) {
			s.logger.Warn("move grading skipped, oracle unavailable", zap.Error(err))
		}
		return feedback
	}

	best := candidates[0]
	feedback.BestUCI = best.Move
	if mv, decodeErr := (nchess.UCINotation{}).Decode(pos, best.Move); decodeErr == nil {
		feedback.BestSAN = nchess.AlgebraicNotation{}.Encode(pos, mv)
	}

	found := false
	for _, cand := range candidates {
		if strings.EqualFold(cand.Move, playedUCI) {
			feedback.LossCP = best.EvalCP - cand.EvalCP
			found = true
			break
		}
	}
	if !found {
		// Outside the MultiPV window: worse than every surfaced line.
		feedback.Grade = GradeMistake
		feedback.LossCP = mistakeLossCP
		return feedback
	}

	switch {
	case feedback.LossCP <= goodLossCP:
		feedback.Grade = GradeGood
	case feedback.LossCP <= passiveLossCP:
		feedback.Grade = GradePassive
	case feedback.LossCP <= mistakeLossCP:
		feedback.Grade = GradeMistake
	default:
		feedback.Grade = GradeBlunder
	}
	return feedback
}

func (s *Service) renderFeedback(feedback MoveFeedback, posBefore *nchess.Position, state *SessionState) MoveFeedback {
	if state != nil && state.Outcome != nchess.NoOutcome {
		if text, err := s.catalog.Render("feedback.game_over", map[string]any{"Outcome": state.Outcome.String()}); err == nil {
			feedback.Text = text
			return feedback
		}
	}

	data := map[string]any{
		"PlayedSAN": feedback.PlayedSAN,
		"BestSAN":   feedback.BestSAN,
		"Reason":    "",
	}
	if feedback.Grade == GradeGood {
		if exp, err := corecoach.NewExplainer(s.catalog).Explain(posBefore, feedback.PlayedUCI); err == nil {
			data["Reason"] = exp.Text
		}
	}
	if text, err := s.catalog.Render("feedback."+string(feedback.Grade), data); err == nil {
		feedback.Text = strings.TrimSpace(text)
	}
	return feedback
}

func (s *Service) persistFinishedGame(ctx context.Context, identity sessionIdentity, payload *sessionPayload, game *nchess.Game) (int64, *domain.LearnerProfile, error) {
	now := time.Now()
	record := &domain.CoachGame{
		SessionUUID:     payload.SessionUUID,
		LearnerHash:     identity.LearnerHash,
		Mode:            payload.Mode,
		Elo:             payload.Elo,
		Result:          resultFromOutcome(game.Outcome()),
		ResultMethod:    strings.ToLower(game.Method().String()),
		MovesUCI:        append([]string(nil), payload.Moves...),
		MovesSAN:        sanHistory(game),
		PGN:             game.String(),
		StartedAt:       payload.StartedAt,
		EndedAt:         now,
		Duration:        now.Sub(payload.StartedAt),
		Mistakes:        payload.Mistakes,
		Blunders:        payload.Blunders,
		SuggestionsUsed: payload.SuggestionsUsed,
	}

	gameID, err := s.repo.InsertGame(ctx, record)
	if err != nil {
		if errors.Is(err, ErrDuplicateGame) {
			existing, fetchErr := s.repo.GetGameBySession(ctx, payload.SessionUUID, identity.LearnerHash)
			if fetchErr != nil || existing == nil {
				return 0, nil, err
			}
			profile, profErr := s.fetchProfile(ctx, identity, true)
			if profErr != nil && !errors.Is(profErr, ErrProfileNotFound) {
				return existing.ID, nil, profErr
			}
			return existing.ID, profile, nil
		}
		return 0, nil, err
	}
	record.ID = gameID

	profile, err := s.fetchProfile(ctx, identity, false)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return gameID, nil, err
	}
	profile = applySessionResult(profile, identity, payload, now)
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return gameID, nil, err
	}
	s.cacheProfile(ctx, identity, profile)
	return gameID, profile, nil
}

func applySessionResult(profile *domain.LearnerProfile, identity sessionIdentity, payload *sessionPayload, endedAt time.Time) *domain.LearnerProfile {
	if profile == nil {
		profile = &domain.LearnerProfile{
			LearnerHash: identity.LearnerHash,
			Elo:         payload.Elo,
			CreatedAt:   endedAt,
		}
	}
	profile.SessionsPlayed++
	profile.MovesPlayed += len(payload.Moves)
	profile.Mistakes += payload.Mistakes
	profile.Blunders += payload.Blunders
	profile.SuggestionsUsed += payload.SuggestionsUsed
	profile.LastMode = payload.Mode
	profile.LastPlayedAt = endedAt
	profile.UpdatedAt = endedAt
	if payload.Elo > 0 {
		profile.Elo = payload.Elo
	}
	return profile
}

func (s *Service) fetchProfile(ctx context.Context, identity sessionIdentity, allowCache bool) (*domain.LearnerProfile, error) {
	if !allowCache {
		profile, err := s.repo.GetProfile(ctx, identity.LearnerHash)
		if profile == nil && err == nil {
			return nil, ErrProfileNotFound
		}
		if err != nil {
			return nil, err
		}
		s.cacheProfile(ctx, identity, profile)
		return profile, nil
	}

	key := s.profileCacheKey(identity)
	profile := &domain.LearnerProfile{}
	if err := s.cache.Get(ctx, key, profile); err != nil {
		return nil, err
	}
	if profile.LearnerHash != "" {
		return profile, nil
	}

	stored, err := s.repo.GetProfile(ctx, identity.LearnerHash)
	if stored == nil && err == nil {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	s.cacheProfile(ctx, identity, stored)
	return stored, nil
}

func (s *Service) cacheProfile(ctx context.Context, identity sessionIdentity, profile *domain.LearnerProfile) {
	if profile == nil {
		return
	}
	if err := s.cache.Set(ctx, s.profileCacheKey(identity), profile, profileCacheTTL); err != nil {
		s.logger.Warn("failed to cache learner profile", zap.Error(err))
	}
}

func (s *Service) sessionKey(identity sessionIdentity) string {
	return "coach:sessions:" + identity.LearnerHash
}

func (s *Service) profileCacheKey(identity sessionIdentity) string {
	return "coach:profile:" + identity.LearnerHash
}

func (s *Service) loadSession(ctx context.Context, identity sessionIdentity) (*sessionPayload, error) {
	payload := &sessionPayload{}
	if err := s.cache.Get(ctx, s.sessionKey(identity), payload); err != nil {
		return nil, err
	}
	if payload.SessionUUID == "" {
		return nil, nil
	}
	return payload, nil
}

func (s *Service) saveSession(ctx context.Context, identity sessionIdentity, payload *sessionPayload) error {
	if payload == nil {
		return fmt.Errorf("cannot save nil coach session payload")
	}
	payload.UpdatedAt = time.Now()
	return s.cache.Set(ctx, s.sessionKey(identity), payload, s.cfg.SessionTTL)
}

func (s *Service) deleteSession(ctx context.Context, identity sessionIdentity) error {
	return s.cache.Del(ctx, s.sessionKey(identity))
}

func replaySession(payload *sessionPayload) (*nchess.Game, error) {
	game := nchess.NewGame()
	notation := nchess.UCINotation{}
	for _, mv := range payload.Moves {
		move, err := notation.Decode(game.Position(), strings.ToLower(strings.TrimSpace(mv)))
		if err != nil {
			return nil, fmt.Errorf("decode move %s: %w", mv, err)
		}
		if err := game.Move(move, nil); err != nil {
			return nil, fmt.Errorf("apply move %s: %w", mv, err)
		}
	}
	return game, nil
}

func sanHistory(game *nchess.Game) []string {
	positions := game.Positions()
	moves := game.Moves()
	out := make([]string, len(moves))
	notation := nchess.AlgebraicNotation{}
	for i, mv := range moves {
		if i < len(positions) {
			out[i] = notation.Encode(positions[i], mv)
		}
	}
	return out
}

func (s *Service) stateFromGame(payload *sessionPayload, game *nchess.Game) *SessionState {
	mode, _ := corecoach.ParseMode(payload.Mode)
	return &SessionState{
		SessionUUID:     payload.SessionUUID,
		LearnerHash:     payload.LearnerHash,
		Mode:            mode,
		Elo:             payload.Elo,
		Moves:           append([]string(nil), payload.Moves...),
		MovesSAN:        sanHistory(game),
		FEN:             game.FEN(),
		Turn:            strings.ToLower(game.Position().Turn().String()),
		MoveCount:       len(payload.Moves),
		Outcome:         game.Outcome(),
		OutcomeMethod:   game.Method(),
		Mistakes:        payload.Mistakes,
		Blunders:        payload.Blunders,
		SuggestionsUsed: payload.SuggestionsUsed,
		StartedAt:       payload.StartedAt,
		UpdatedAt:       payload.UpdatedAt,
	}
}

func (s *Service) attachBoardImage(ctx context.Context, state *SessionState, position *nchess.Position, highlight *MoveHighlight) {
	if state == nil || position == nil || s.renderer == nil {
		return
	}
	data, err := s.renderer.RenderPNG(ctx, position.Board(), RenderOptions{Highlight: highlight})
	if err != nil {
		s.logger.Warn("failed to render board image", zap.Error(err))
		return
	}
	state.BoardImage = data
}

func deriveIdentity(meta SessionMeta) (sessionIdentity, error) {
	learner := strings.ToLower(strings.TrimSpace(meta.Learner))
	if learner == "" {
		return sessionIdentity{}, fmt.Errorf("learner id is required")
	}
	sum := sha256.Sum256([]byte(learner))
	return sessionIdentity{LearnerHash: hex.EncodeToString(sum[:])}, nil
}

func clampElo(elo int) int {
	if elo < minElo {
		return minElo
	}
	if elo > maxElo {
		return maxElo
	}
	return elo
}

func resultFromOutcome(outcome nchess.Outcome) string {
	switch outcome {
	case nchess.WhiteWon:
		return "white_won"
	case nchess.BlackWon:
		return "black_won"
	case nchess.Draw:
		return "draw"
	default:
		return "ended"
	}
}
