package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"
	corecoach "github.com/karu-dev/pawn-tutor/internal/coach"
	"github.com/karu-dev/pawn-tutor/internal/domain"
	svccoach "github.com/karu-dev/pawn-tutor/internal/service/coach"
	"github.com/karu-dev/pawn-tutor/pkg/coachdto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Server exposes the coaching service over a small JSON API.
type Server struct {
	svc      *svccoach.Service
	renderer svccoach.BoardRenderer
	logger   *zap.Logger

	httpServer *fasthttp.Server
}

func NewServer(svc *svccoach.Service, renderer svccoach.BoardRenderer, logger *zap.Logger) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("coach service is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("board renderer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, renderer: renderer, logger: logger}
	s.httpServer = &fasthttp.Server{
		Handler:            s.route,
		Name:               "pawn-tutor",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       60 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	return s, nil
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http api listening", zap.String("addr", addr))
	return s.httpServer.ListenAndServe(addr)
}

func (s *Server) Shutdown() error {
	return s.httpServer.Shutdown()
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/healthz" && method == fasthttp.MethodGet:
		s.handleHealth(ctx)
	case path == "/api/suggest" && method == fasthttp.MethodPost:
		s.handleSuggest(ctx)
	case path == "/api/session/start" && method == fasthttp.MethodPost:
		s.handleSessionStart(ctx)
	case path == "/api/session/play" && method == fasthttp.MethodPost:
		s.handleSessionPlay(ctx)
	case path == "/api/session/suggest" && method == fasthttp.MethodPost:
		s.handleSessionSuggest(ctx)
	case path == "/api/session/end" && method == fasthttp.MethodPost:
		s.handleSessionEnd(ctx)
	case path == "/api/session/preferences" && method == fasthttp.MethodPost:
		s.handleSessionPreferences(ctx)
	case path == "/api/session/status" && method == fasthttp.MethodGet:
		s.handleSessionStatus(ctx)
	case path == "/api/session/history" && method == fasthttp.MethodGet:
		s.handleSessionHistory(ctx)
	case path == "/api/session/profile" && method == fasthttp.MethodGet:
		s.handleSessionProfile(ctx)
	case path == "/api/board.png" && method == fasthttp.MethodGet:
		s.handleBoardPNG(ctx)
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "not_found", "unknown endpoint")
	}
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSuggest(ctx *fasthttp.RequestCtx) {
	var req coachdto.SuggestRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	advice, err := s.svc.SuggestPosition(ctx, req.FEN, req.Mode, req.Elo, req.K)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toSuggestionDTO(advice))
}

func (s *Server) handleSessionStart(ctx *fasthttp.RequestCtx) {
	var req coachdto.StartSessionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	state, err := s.svc.StartSession(ctx, svccoach.SessionMeta{Learner: req.Learner}, req.Mode, req.Elo)
	resumed := errors.Is(err, svccoach.ErrSessionInProgress)
	if err != nil && !resumed {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, coachdto.StartSessionResponse{
		State:   toSessionStateDTO(state),
		Resumed: resumed,
	})
}

func (s *Server) handleSessionPlay(ctx *fasthttp.RequestCtx) {
	var req coachdto.PlayRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	summary, err := s.svc.Play(ctx, svccoach.SessionMeta{Learner: req.Learner}, req.Move)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, coachdto.PlayResponse{Summary: toMoveSummaryDTO(summary)})
}

func (s *Server) handleSessionSuggest(ctx *fasthttp.RequestCtx) {
	var req coachdto.SessionSuggestRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	advice, err := s.svc.Suggest(ctx, svccoach.SessionMeta{Learner: req.Learner})
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toSuggestionDTO(advice))
}

func (s *Server) handleSessionEnd(ctx *fasthttp.RequestCtx) {
	var req coachdto.EndSessionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	state, err := s.svc.End(ctx, svccoach.SessionMeta{Learner: req.Learner})
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, coachdto.EndSessionResponse{State: toSessionStateDTO(state)})
}

func (s *Server) handleSessionPreferences(ctx *fasthttp.RequestCtx) {
	var req coachdto.PreferencesRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	profile, err := s.svc.UpdatePreferences(ctx, svccoach.SessionMeta{Learner: req.Learner}, req.Mode, req.Elo)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toProfileDTO(profile))
}

func (s *Server) handleSessionStatus(ctx *fasthttp.RequestCtx) {
	learner := string(ctx.QueryArgs().Peek("learner"))
	state, err := s.svc.Status(ctx, svccoach.SessionMeta{Learner: learner})
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toSessionStateDTO(state))
}

func (s *Server) handleSessionHistory(ctx *fasthttp.RequestCtx) {
	learner := string(ctx.QueryArgs().Peek("learner"))
	limit, _ := strconv.Atoi(string(ctx.QueryArgs().Peek("limit")))
	games, err := s.svc.History(ctx, svccoach.SessionMeta{Learner: learner}, limit)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	out := coachdto.HistoryResponse{Games: make([]coachdto.GameRecord, 0, len(games))}
	for _, g := range games {
		out.Games = append(out.Games, toGameRecordDTO(g))
	}
	s.writeJSON(ctx, fasthttp.StatusOK, out)
}

func (s *Server) handleSessionProfile(ctx *fasthttp.RequestCtx) {
	learner := string(ctx.QueryArgs().Peek("learner"))
	profile, err := s.svc.Profile(ctx, svccoach.SessionMeta{Learner: learner})
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toProfileDTO(profile))
}

func (s *Server) handleBoardPNG(ctx *fasthttp.RequestCtx) {
	fen := string(ctx.QueryArgs().Peek("fen"))
	pos, err := corecoach.ParsePosition(fen)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_fen", "invalid FEN")
		return
	}
	data, err := s.renderer.RenderPNG(ctx, pos.Board(), svccoach.RenderOptions{})
	if err != nil {
		s.logger.Error("board render failed", zap.Error(err))
		s.writeError(ctx, fasthttp.StatusInternalServerError, "render_failed", "board rendering failed")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("image/png")
	ctx.SetBody(data)
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("response encoding failed", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(body)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, code, message string) {
	s.writeJSON(ctx, status, coachdto.DomainError{Code: code, Message: message})
}

func (s *Server) writeDomainError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, corecoach.ErrEncoding):
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_fen", err.Error())
	case errors.Is(err, corecoach.ErrNoLegalMoves):
		s.writeError(ctx, fasthttp.StatusConflict, "game_over", "no legal moves in this position")
	case errors.Is(err, corecoach.ErrScoring):
		s.writeError(ctx, fasthttp.StatusUnprocessableEntity, "scoring_failed", err.Error())
	case errors.Is(err, corecoach.ErrOracleUnavailable):
		s.writeJSON(ctx, fasthttp.StatusServiceUnavailable, coachdto.DomainError{
			Code: "engine_unavailable", Message: "engine unavailable", Retryable: true,
		})
	case errors.Is(err, svccoach.ErrSessionNotFound):
		s.writeError(ctx, fasthttp.StatusNotFound, "session_not_found", "no active session for learner")
	case errors.Is(err, svccoach.ErrGameNotFound):
		s.writeError(ctx, fasthttp.StatusNotFound, "game_not_found", "game not found")
	case errors.Is(err, svccoach.ErrProfileNotFound):
		s.writeError(ctx, fasthttp.StatusNotFound, "profile_not_found", "learner profile not found")
	case errors.Is(err, svccoach.ErrInvalidMove):
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid_move", "move is not legal in this position")
	case errors.Is(err, svccoach.ErrGameFinished):
		s.writeError(ctx, fasthttp.StatusConflict, "game_finished", "game already finished")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.writeJSON(ctx, fasthttp.StatusGatewayTimeout, coachdto.DomainError{
			Code: "timeout", Message: "request timed out", Retryable: true,
		})
	default:
		s.logger.Error("unhandled service error", zap.Error(err))
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_request", err.Error())
	}
}

func toSessionStateDTO(state *svccoach.SessionState) *coachdto.SessionState {
	if state == nil {
		return nil
	}
	outcome := ""
	method := ""
	if state.Outcome != nchess.NoOutcome {
		outcome = state.Outcome.String()
		method = strings.ToLower(state.OutcomeMethod.String())
	}
	return &coachdto.SessionState{
		SessionUUID:     state.SessionUUID,
		Mode:            string(state.Mode),
		Elo:             state.Elo,
		MovesUCI:        state.Moves,
		MovesSAN:        state.MovesSAN,
		FEN:             state.FEN,
		Turn:            state.Turn,
		MoveCount:       state.MoveCount,
		Outcome:         outcome,
		OutcomeMethod:   method,
		Mistakes:        state.Mistakes,
		Blunders:        state.Blunders,
		SuggestionsUsed: state.SuggestionsUsed,
		StartedAt:       state.StartedAt,
		Profile:         toProfileDTO(state.Profile),
	}
}

func toMoveSummaryDTO(summary *svccoach.MoveSummary) *coachdto.MoveSummary {
	if summary == nil {
		return nil
	}
	return &coachdto.MoveSummary{
		State: toSessionStateDTO(summary.State),
		Feedback: coachdto.MoveFeedback{
			PlayedSAN: summary.Feedback.PlayedSAN,
			PlayedUCI: summary.Feedback.PlayedUCI,
			Grade:     string(summary.Feedback.Grade),
			LossCP:    summary.Feedback.LossCP,
			BestUCI:   summary.Feedback.BestUCI,
			BestSAN:   summary.Feedback.BestSAN,
			Text:      summary.Feedback.Text,
		},
		Finished: summary.Finished,
		GameID:   summary.GameID,
	}
}

func toSuggestionDTO(advice *svccoach.Advice) *coachdto.Suggestion {
	if advice == nil || advice.Suggestion == nil {
		return nil
	}
	sg := advice.Suggestion
	out := &coachdto.Suggestion{
		ChosenMove:  splitUCIMove(sg.Chosen.Move),
		Move:        sg.Chosen.Move,
		MoveSAN:     sg.ChosenSAN,
		Reason:      string(sg.Explanation.Reason),
		Explanation: sg.Explanation.Text,
		Candidates:  make([]coachdto.ScoredCandidate, 0, len(sg.Candidates)),
		Diagnostics: sg.Diagnostics,
		WhyNot:      advice.WhyNot,
		Tip:         advice.Tip,
		DurationMS:  sg.Duration.Milliseconds(),
	}
	for _, c := range sg.Candidates {
		out.Candidates = append(out.Candidates, coachdto.ScoredCandidate{
			Move:       c.Move,
			EvalCP:     c.EvalCP,
			Principal:  c.Principal,
			HumanScore: c.HumanScore,
			Risk:       string(c.Risk),
			Rank:       c.Rank,
		})
	}
	return out
}

func splitUCIMove(move string) coachdto.ChosenMove {
	if len(move) < 4 {
		return coachdto.ChosenMove{From: move}
	}
	return coachdto.ChosenMove{
		From:      move[0:2],
		To:        move[2:4],
		Promotion: move[4:],
	}
}

func toGameRecordDTO(game *domain.CoachGame) coachdto.GameRecord {
	return coachdto.GameRecord{
		ID:              game.ID,
		SessionUUID:     game.SessionUUID,
		Mode:            game.Mode,
		Elo:             game.Elo,
		Result:          game.Result,
		ResultMethod:    game.ResultMethod,
		MovesUCI:        game.MovesUCI,
		MovesSAN:        game.MovesSAN,
		PGN:             game.PGN,
		StartedAt:       game.StartedAt,
		EndedAt:         game.EndedAt,
		DurationMS:      game.Duration.Milliseconds(),
		Mistakes:        game.Mistakes,
		Blunders:        game.Blunders,
		SuggestionsUsed: game.SuggestionsUsed,
	}
}

func toProfileDTO(profile *domain.LearnerProfile) *coachdto.LearnerProfile {
	if profile == nil {
		return nil
	}
	return &coachdto.LearnerProfile{
		Elo:             profile.Elo,
		PreferredMode:   profile.PreferredMode,
		SessionsPlayed:  profile.SessionsPlayed,
		MovesPlayed:     profile.MovesPlayed,
		Mistakes:        profile.Mistakes,
		Blunders:        profile.Blunders,
		SuggestionsUsed: profile.SuggestionsUsed,
		LastMode:        profile.LastMode,
		LastPlayedAt:    profile.LastPlayedAt,
	}
}
