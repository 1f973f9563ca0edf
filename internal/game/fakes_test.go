package game

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/tenseconds/internal/model"
	"github.com/iliyamo/tenseconds/internal/repository"
)

// memStore is an in-memory SessionStore that enforces one ACTIVE session
// per user the way the unique key on active_user_id does.
type memStore struct {
	mu       sync.Mutex
	nextID   uint64
	sessions []model.GameSession
	users    map[uint64]string

	// beforeCreate runs after the store lock is taken, just before the
	// uniqueness check; tests use it to inject a concurrent winner.
	beforeCreate func(*memStore)
	createErr    error
	findErr      error
}

func newMemStore() *memStore {
	return &memStore{users: map[uint64]string{}}
}

func (m *memStore) addUser(id uint64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = name
}

func (m *memStore) insertLocked(s model.GameSession) model.GameSession {
	m.nextID++
	s.ID = m.nextID
	m.sessions = append(m.sessions, s)
	return s
}

// seed stores finished sessions with the given deviations for a user.
func (m *memStore) seed(userID uint64, status string, deviations ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range deviations {
		stop := time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC)
		s := model.GameSession{UserID: userID, StartTime: stop.Add(-10 * time.Second), Status: status, Deviation: d, Duration: 10000 + d}
		if status != model.StatusActive {
			s.StopTime = &stop
		} else {
			s.Deviation, s.Duration = 0, 0
		}
		m.insertLocked(s)
	}
}

func (m *memStore) FindActiveByUser(_ context.Context, userID uint64) (model.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return model.GameSession{}, m.findErr
	}
	for _, s := range m.sessions {
		if s.UserID == userID && s.Active() {
			return s, nil
		}
	}
	return model.GameSession{}, repository.ErrNotFound
}

func (m *memStore) FindActiveByID(_ context.Context, id uint64) (model.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return model.GameSession{}, m.findErr
	}
	for _, s := range m.sessions {
		if s.ID == id && s.Active() {
			return s, nil
		}
	}
	return model.GameSession{}, repository.ErrNotFound
}

func (m *memStore) Create(_ context.Context, s model.GameSession) (model.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeCreate != nil {
		hook := m.beforeCreate
		m.beforeCreate = nil
		hook(m)
	}
	if m.createErr != nil {
		return model.GameSession{}, m.createErr
	}
	for _, existing := range m.sessions {
		if existing.UserID == s.UserID && existing.Active() {
			return model.GameSession{}, repository.ErrActiveSessionExists
		}
	}
	return m.insertLocked(s), nil
}

func (m *memStore) Finish(_ context.Context, s model.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.sessions {
		if existing.ID == s.ID && existing.Active() {
			m.sessions[i] = s
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memStore) aggregate(userID uint64, finishedOnly bool) (model.PlayerStats, bool) {
	st := model.PlayerStats{Username: m.users[userID]}
	var sum int64
	for _, s := range m.sessions {
		if s.UserID != userID || (finishedOnly && s.Active()) {
			continue
		}
		if st.TotalGames == 0 || s.Deviation < st.BestDeviation {
			st.BestDeviation = s.Deviation
		}
		st.TotalGames++
		sum += s.Deviation
	}
	if st.TotalGames == 0 {
		return model.PlayerStats{}, false
	}
	st.AverageDeviation = float64(sum) / float64(st.TotalGames)
	return st, true
}

func (m *memStore) Leaderboard(_ context.Context, offset, limit int, finishedOnly bool) ([]model.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	type row struct {
		userID uint64
		stats  model.PlayerStats
	}
	seen := map[uint64]bool{}
	var rows []row
	for _, s := range m.sessions {
		if seen[s.UserID] {
			continue
		}
		seen[s.UserID] = true
		if st, ok := m.aggregate(s.UserID, finishedOnly); ok {
			rows = append(rows, row{s.UserID, st})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].stats.AverageDeviation != rows[j].stats.AverageDeviation {
			return rows[i].stats.AverageDeviation < rows[j].stats.AverageDeviation
		}
		return rows[i].userID < rows[j].userID
	})
	out := []model.LeaderboardEntry{}
	for i := offset; i < len(rows) && i < offset+limit; i++ {
		out = append(out, rows[i].stats)
	}
	return out, nil
}

func (m *memStore) AggregateForUser(_ context.Context, userID uint64, finishedOnly bool) (model.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.aggregate(userID, finishedOnly)
	if !ok {
		return model.PlayerStats{}, repository.ErrNotFound
	}
	return st, nil
}

func (m *memStore) ListByUser(_ context.Context, userID uint64) ([]model.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.GameSession{}
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	list, _ := m.ListByUser(ctx, userID)
	return int64(len(list)), nil
}

func (m *memStore) activeCount(userID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.Active() {
			n++
		}
	}
	return n
}

// memUsers is a UserDirectory backed by the memStore's user map.
type memUsers struct{ store *memStore }

func (u memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	name, ok := u.store.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return model.User{ID: id, Username: name}, nil
}

func (u memUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for id, name := range u.store.users {
		if name == username {
			return model.User{ID: id, Username: name}, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

// fakeClock returns a settable instant.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingPublisher keeps every published session.
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.GameSession
	err    error
}

func (p *recordingPublisher) PublishGameFinished(_ context.Context, s model.GameSession) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, s)
	return p.err
}

var errStoreDown = errors.New("store down")
