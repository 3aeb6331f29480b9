package coach

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/karu-dev/pawn-tutor/internal/domain"
)

var ErrDuplicateGame = errors.New("coach game already exists")

type Repository interface {
	InsertGame(ctx context.Context, game *domain.CoachGame) (int64, error)
	GetRecentGames(ctx context.Context, learnerHash string, limit int) ([]*domain.CoachGame, error)
	GetGame(ctx context.Context, id int64, learnerHash string) (*domain.CoachGame, error)
	GetGameBySession(ctx context.Context, sessionUUID string, learnerHash string) (*domain.CoachGame, error)
	GetProfile(ctx context.Context, learnerHash string) (*domain.LearnerProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.LearnerProfile) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const gameColumns = `
	id,
	session_uuid,
	learner_hash,
	mode,
	elo,
	result,
	result_method,
	moves_uci,
	moves_san,
	pgn,
	started_at,
	ended_at,
	duration_ms,
	mistakes,
	blunders,
	suggestions_used`

func (r *repository) InsertGame(ctx context.Context, game *domain.CoachGame) (int64, error) {
	if game == nil {
		return 0, fmt.Errorf("nil coach game payload")
	}

	movesUCI, err := json.Marshal(game.MovesUCI)
	if err != nil {
		return 0, fmt.Errorf("marshal moves_uci: %w", err)
	}
	movesSAN, err := json.Marshal(game.MovesSAN)
	if err != nil {
		return 0, fmt.Errorf("marshal moves_san: %w", err)
	}

	const query = `
		INSERT INTO coach_games (
			session_uuid,
			learner_hash,
			mode,
			elo,
			result,
			result_method,
			moves_uci,
			moves_san,
			pgn,
			started_at,
			ended_at,
			duration_ms,
			mistakes,
			blunders,
			suggestions_used
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (session_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err = r.db.QueryRowContext(
		ctx,
		query,
		game.SessionUUID,
		game.LearnerHash,
		game.Mode,
		game.Elo,
		game.Result,
		game.ResultMethod,
		movesUCI,
		movesSAN,
		game.PGN,
		game.StartedAt,
		game.EndedAt,
		game.Duration.Milliseconds(),
		game.Mistakes,
		game.Blunders,
		game.SuggestionsUsed,
	).Scan(&id)
	if err == sql.ErrNoRows || (err == nil && !id.Valid) {
		return 0, ErrDuplicateGame
	}
	if err != nil {
		return 0, fmt.Errorf("insert coach game: %w", err)
	}
	return id.Int64, nil
}

func (r *repository) GetRecentGames(ctx context.Context, learnerHash string, limit int) ([]*domain.CoachGame, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT` + gameColumns + `
		FROM coach_games
		WHERE learner_hash = $1
		ORDER BY ended_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, learnerHash, limit)
	if err != nil {
		return nil, fmt.Errorf("select coach games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.CoachGame, 0, limit)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (r *repository) GetGame(ctx context.Context, id int64, learnerHash string) (*domain.CoachGame, error) {
	query := `SELECT` + gameColumns + `
		FROM coach_games
		WHERE id = $1 AND learner_hash = $2`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, id, learnerHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (r *repository) GetGameBySession(ctx context.Context, sessionUUID string, learnerHash string) (*domain.CoachGame, error) {
	query := `SELECT` + gameColumns + `
		FROM coach_games
		WHERE session_uuid = $1 AND learner_hash = $2
		ORDER BY ended_at DESC
		LIMIT 1`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, sessionUUID, learnerHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return game, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*domain.CoachGame, error) {
	var (
		game         domain.CoachGame
		movesUCIJSON []byte
		movesSANJSON []byte
		durationMS   sql.NullInt64
	)
	if err := row.Scan(
		&game.ID,
		&game.SessionUUID,
		&game.LearnerHash,
		&game.Mode,
		&game.Elo,
		&game.Result,
		&game.ResultMethod,
		&movesUCIJSON,
		&movesSANJSON,
		&game.PGN,
		&game.StartedAt,
		&game.EndedAt,
		&durationMS,
		&game.Mistakes,
		&game.Blunders,
		&game.SuggestionsUsed,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan coach game: %w", err)
	}
	if durationMS.Valid {
		game.Duration = time.Duration(durationMS.Int64) * time.Millisecond
	}
	if err := json.Unmarshal(movesUCIJSON, &game.MovesUCI); err != nil {
		return nil, fmt.Errorf("unmarshal moves_uci: %w", err)
	}
	if err := json.Unmarshal(movesSANJSON, &game.MovesSAN); err != nil {
		return nil, fmt.Errorf("unmarshal moves_san: %w", err)
	}
	return &game, nil
}

func (r *repository) GetProfile(ctx context.Context, learnerHash string) (*domain.LearnerProfile, error) {
	const query = `
		SELECT
			learner_hash,
			elo,
			preferred_mode,
			sessions_played,
			moves_played,
			mistakes,
			blunders,
			suggestions_used,
			last_mode,
			last_played_at,
			updated_at,
			created_at
		FROM learner_profiles
		WHERE learner_hash = $1
		LIMIT 1`

	var profile domain.LearnerProfile
	err := r.db.QueryRowContext(ctx, query, learnerHash).Scan(
		&profile.LearnerHash,
		&profile.Elo,
		&profile.PreferredMode,
		&profile.SessionsPlayed,
		&profile.MovesPlayed,
		&profile.Mistakes,
		&profile.Blunders,
		&profile.SuggestionsUsed,
		&profile.LastMode,
		&profile.LastPlayedAt,
		&profile.UpdatedAt,
		&profile.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select learner profile: %w", err)
	}
	return &profile, nil
}

func (r *repository) UpsertProfile(ctx context.Context, profile *domain.LearnerProfile) error {
	if profile == nil {
		return fmt.Errorf("nil learner profile payload")
	}
	const query = `
		INSERT INTO learner_profiles (
			learner_hash,
			elo,
			preferred_mode,
			sessions_played,
			moves_played,
			mistakes,
			blunders,
			suggestions_used,
			last_mode,
			last_played_at,
			updated_at,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (learner_hash)
		DO UPDATE SET
			elo = EXCLUDED.elo,
			preferred_mode = EXCLUDED.preferred_mode,
			sessions_played = EXCLUDED.sessions_played,
			moves_played = EXCLUDED.moves_played,
			mistakes = EXCLUDED.mistakes,
			blunders = EXCLUDED.blunders,
			suggestions_used = EXCLUDED.suggestions_used,
			last_mode = EXCLUDED.last_mode,
			last_played_at = EXCLUDED.last_played_at,
			updated_at = NOW()`

	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.LearnerHash,
		profile.Elo,
		profile.PreferredMode,
		profile.SessionsPlayed,
		profile.MovesPlayed,
		profile.Mistakes,
		profile.Blunders,
		profile.SuggestionsUsed,
		profile.LastMode,
		profile.LastPlayedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert learner profile: %w", err)
	}
	return nil
}
