package coach

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/karu-dev/pawn-tutor/internal/domain"
)

// memrepo is a development-only in-memory repository used when no DB is
// configured.
type memrepo struct {
	mu sync.RWMutex

	nextID int64

	gamesByID      map[int64]*domain.CoachGame
	gamesByLearner map[string][]*domain.CoachGame
	gamesByIndex   map[string]*domain.CoachGame // sessionUUID|learnerHash -> game

	profiles map[string]*domain.LearnerProfile
}

func NewMemoryRepository() Repository {
	return &memrepo{
		gamesByID:      make(map[int64]*domain.CoachGame),
		gamesByLearner: make(map[string][]*domain.CoachGame),
		gamesByIndex:   make(map[string]*domain.CoachGame),
		profiles:       make(map[string]*domain.LearnerProfile),
	}
}

func (m *memrepo) InsertGame(ctx context.Context, game *domain.CoachGame) (int64, error) {
	if game == nil {
		return 0, ErrDuplicateGame
	}

	key := m.sessionKey(game.SessionUUID, game.LearnerHash)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.gamesByIndex[key]; exists {
		return 0, ErrDuplicateGame
	}

	m.nextID++
	id := m.nextID
	stored := *game
	stored.ID = id

	m.gamesByID[id] = &stored
	m.gamesByIndex[key] = &stored
	m.gamesByLearner[game.LearnerHash] = append(m.gamesByLearner[game.LearnerHash], &stored)

	return id, nil
}

func (m *memrepo) GetRecentGames(ctx context.Context, learnerHash string, limit int) ([]*domain.CoachGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.gamesByLearner[learnerHash]
	if len(list) == 0 {
		return []*domain.CoachGame{}, nil
	}
	items := append([]*domain.CoachGame(nil), list...)
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memrepo) GetGame(ctx context.Context, id int64, learnerHash string) (*domain.CoachGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gamesByID[id]
	if !ok || g == nil || g.LearnerHash != learnerHash {
		return nil, nil
	}
	stored := *g
	return &stored, nil
}

func (m *memrepo) GetGameBySession(ctx context.Context, sessionUUID string, learnerHash string) (*domain.CoachGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.gamesByIndex[m.sessionKey(sessionUUID, learnerHash)]; ok && g != nil {
		stored := *g
		return &stored, nil
	}
	return nil, nil
}

func (m *memrepo) GetProfile(ctx context.Context, learnerHash string) (*domain.LearnerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.profiles[strings.TrimSpace(learnerHash)]; ok && p != nil {
		stored := *p
		return &stored, nil
	}
	return nil, nil
}

func (m *memrepo) UpsertProfile(ctx context.Context, profile *domain.LearnerProfile) error {
	if profile == nil {
		return nil
	}
	stored := *profile
	m.mu.Lock()
	m.profiles[strings.TrimSpace(profile.LearnerHash)] = &stored
	m.mu.Unlock()
	return nil
}

func (m *memrepo) sessionKey(sessionUUID, learnerHash string) string {
	return strings.TrimSpace(sessionUUID) + "|" + strings.TrimSpace(learnerHash)
}
