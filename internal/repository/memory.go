package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gameswap-api/internal/model"
)

// MemoryStore is an in-memory implementation of the three record-store
// repositories. Use it for development and testing. All three entity maps
// share one mutex so the ownership swap commits as a single critical
// section, matching the transactional guarantee of the MongoDB backend.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]*model.User
	games     map[string]*model.Game
	exchanges map[string]*model.Exchange
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]*model.User),
		games:     make(map[string]*model.Game),
		exchanges: make(map[string]*model.Exchange),
	}
}

// Users returns the UserRepository view of the store.
func (s *MemoryStore) Users() UserRepository { return &memoryUserRepo{s} }

// Games returns the GameRepository view of the store.
func (s *MemoryStore) Games() GameRepository { return &memoryGameRepo{s} }

// Exchanges returns the ExchangeRepository view of the store.
func (s *MemoryStore) Exchanges() ExchangeRepository { return &memoryExchangeRepo{s} }

// --- users ---

type memoryUserRepo struct {
	s *MemoryStore
}

func (r *memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	u := *user
	r.s.users[u.ID] = &u
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepo) List(ctx context.Context) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]*model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out := *u
		users = append(users, &out)
	}
	sortByCreation(users, func(u *model.User) (time.Time, string) { return u.CreatedAt, u.ID })
	return users, nil
}

func (r *memoryUserRepo) Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil {
		for uid, other := range r.s.users {
			if uid != id && other.Email == *upd.Email {
				return nil, ErrDuplicateEmail
			}
		}
		u.Email = *upd.Email
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.ClearAddress {
		u.Address = nil
	} else if upd.Address != nil {
		addr := *upd.Address
		u.Address = &addr
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	u.UpdatedAt = time.Now().UTC()

	out := *u
	return &out, nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// --- games ---

type memoryGameRepo struct {
	s *MemoryStore
}

func (r *memoryGameRepo) Create(ctx context.Context, game *model.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g := *game
	r.s.games[g.ID] = &g
	return nil
}

func (r *memoryGameRepo) GetByID(ctx context.Context, id string) (*model.Game, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *g
	return &out, nil
}

func (r *memoryGameRepo) List(ctx context.Context) ([]*model.Game, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	games := make([]*model.Game, 0, len(r.s.games))
	for _, g := range r.s.games {
		out := *g
		games = append(games, &out)
	}
	sortByCreation(games, func(g *model.Game) (time.Time, string) { return g.CreatedAt, g.ID })
	return games, nil
}

func (r *memoryGameRepo) Update(ctx context.Context, id string, upd model.GameUpdate) (*model.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		g.Name = *upd.Name
	}
	if upd.Publisher != nil {
		g.Publisher = *upd.Publisher
	}
	if upd.YearPublished != nil {
		g.YearPublished = *upd.YearPublished
	}
	if upd.GamingSystem != nil {
		g.GamingSystem = *upd.GamingSystem
	}
	if upd.Condition != nil {
		g.Condition = *upd.Condition
	}
	if upd.NumberOfPreviousOwners != nil {
		n := *upd.NumberOfPreviousOwners
		g.NumberOfPreviousOwners = &n
	}
	if upd.SetOwner {
		if upd.OwnerID != nil {
			owner := *upd.OwnerID
			g.OwnerID = &owner
		} else {
			g.OwnerID = nil
		}
	}
	g.UpdatedAt = time.Now().UTC()

	out := *g
	return &out, nil
}

func (r *memoryGameRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.games[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.games, id)
	return nil
}

func (r *memoryGameRepo) ListByOwner(ctx context.Context, userID string) ([]*model.Game, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	games := []*model.Game{}
	for _, g := range r.s.games {
		if g.OwnedBy(userID) {
			out := *g
			games = append(games, &out)
		}
	}
	sortByCreation(games, func(g *model.Game) (time.Time, string) { return g.CreatedAt, g.ID })
	return games, nil
}

func (r *memoryGameRepo) CountByOwner(ctx context.Context, userID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count int64
	for _, g := range r.s.games {
		if g.OwnedBy(userID) {
			count++
		}
	}
	return count, nil
}

func (r *memoryGameRepo) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed int64
	for id, g := range r.s.games {
		if g.OwnedBy(userID) {
			delete(r.s.games, id)
			removed++
		}
	}
	return removed, nil
}

// --- exchanges ---

type memoryExchangeRepo struct {
	s *MemoryStore
}

func (r *memoryExchangeRepo) Create(ctx context.Context, ex *model.Exchange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e := *ex
	r.s.exchanges[e.ID] = &e
	return nil
}

func (r *memoryExchangeRepo) GetByID(ctx context.Context, id string) (*model.Exchange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.exchanges[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *e
	return &out, nil
}

func (r *memoryExchangeRepo) List(ctx context.Context) ([]*model.Exchange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(*model.Exchange) bool { return true }), nil
}

func (r *memoryExchangeRepo) ListForUser(ctx context.Context, userID string) ([]*model.Exchange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(e *model.Exchange) bool {
		return e.InitiatingUserID == userID || e.TargetUserID == userID
	}), nil
}

// collect assumes the caller holds at least the read lock.
func (r *memoryExchangeRepo) collect(match func(*model.Exchange) bool) []*model.Exchange {
	exchanges := []*model.Exchange{}
	for _, e := range r.s.exchanges {
		if match(e) {
			out := *e
			exchanges = append(exchanges, &out)
		}
	}
	sortByCreation(exchanges, func(e *model.Exchange) (time.Time, string) { return e.CreatedAt, e.ID })
	return exchanges
}

// CompleteSwap performs the status flip and both owner reassignments under
// one lock acquisition, so no reader can observe a partial swap.
func (r *memoryExchangeRepo) CompleteSwap(ctx context.Context, id string, now time.Time) (*model.Exchange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.exchanges[id]
	if !ok {
		return nil, ErrNotFound
	}
	if e.Status != model.StatusPending {
		return nil, ErrNotPending
	}

	if g, ok := r.s.games[e.GameOfferedID]; ok {
		owner := e.TargetUserID
		g.OwnerID = &owner
		g.UpdatedAt = now
	}
	if g, ok := r.s.games[e.GameRequestedID]; ok {
		owner := e.InitiatingUserID
		g.OwnerID = &owner
		g.UpdatedAt = now
	}

	e.Status = model.StatusCompleted
	completedAt := now
	e.CompletedAt = &completedAt
	e.UpdatedAt = now

	out := *e
	return &out, nil
}

func (r *memoryExchangeRepo) RejectPending(ctx context.Context, id string, now time.Time) (*model.Exchange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.exchanges[id]
	if !ok {
		return nil, ErrNotFound
	}
	if e.Status != model.StatusPending {
		return nil, ErrNotPending
	}

	e.Status = model.StatusRejected
	e.UpdatedAt = now

	out := *e
	return &out, nil
}

func (r *memoryExchangeRepo) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed int64
	for id, e := range r.s.exchanges {
		if e.InitiatingUserID == userID || e.TargetUserID == userID {
			delete(r.s.exchanges, id)
			removed++
		}
	}
	return removed, nil
}

// sortByCreation orders entities by creation time, id as tiebreak, so a
// fixed dataset always lists in the same order.
func sortByCreation[T any](items []T, key func(T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if ti.Equal(tj) {
			return idi < idj
		}
		return ti.Before(tj)
	})
}

// MemoryDeliveryLog is an in-memory DeliveryLogRepository for tests.
type MemoryDeliveryLog struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewMemoryDeliveryLog creates an empty in-memory delivery log.
func NewMemoryDeliveryLog() *MemoryDeliveryLog {
	return &MemoryDeliveryLog{seen: make(map[string]bool)}
}

// MarkSent records a delivery, reporting whether it is new.
func (l *MemoryDeliveryLog) MarkSent(ctx context.Context, topic string, partition int, offset int64, recipient, subject string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := fmt.Sprintf("%s/%d/%d/%s", topic, partition, offset, recipient)
	if l.seen[key] {
		return false, nil
	}
	l.seen[key] = true
	return true, nil
}

// Close is a no-op.
func (l *MemoryDeliveryLog) Close() error { return nil }
