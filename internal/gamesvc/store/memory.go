package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tycoonhq/tycoon-services/internal/gamesvc/models"
)

// MemoryStore keeps the whole game state in maps behind one mutex. It
// backs the test suite and gives the same commit-or-rollback contract
// as the Postgres store: RunInTx snapshots the state and restores it
// when fn fails.
type MemoryStore struct {
	mu sync.Mutex
	st memState
}

type memState struct {
	nextID     int64
	games      map[int64]*models.Game
	players    map[int64]*models.GamePlayer
	properties map[int64]*models.GameProperty
	trades     map[int64]*models.TradeRequest
	votes      map[int64]*models.RemovalVote
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		st: memState{
			nextID:     1,
			games:      map[int64]*models.Game{},
			players:    map[int64]*models.GamePlayer{},
			properties: map[int64]*models.GameProperty{},
			trades:     map[int64]*models.TradeRequest{},
			votes:      map[int64]*models.RemovalVote{},
		},
	}
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(ctx, &memTx{st: &s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) GetGameByID(ctx context.Context, gameID int64) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.st.games[gameID]; ok {
		return cloneGame(g), nil
	}
	return nil, nil
}

func (s *MemoryStore) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.st.games {
		if g.Code == code {
			return cloneGame(g), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetPlayersByGameID(ctx context.Context, gameID int64) ([]*models.GamePlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memTx{st: &s.st}).GetPlayersByGameID(ctx, gameID)
}

func (s *MemoryStore) GetOwnershipsByGame(ctx context.Context, gameID int64) ([]*models.GameProperty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&memTx{st: &s.st}).GetOwnershipsByGame(ctx, gameID)
}

func (s *MemoryStore) GetTradeByID(ctx context.Context, id int64) (*models.TradeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.st.trades[id]; ok {
		return cloneTrade(t), nil
	}
	return nil, nil
}

type memTx struct {
	st *memState
}

func (t *memTx) id() int64 {
	id := t.st.nextID
	t.st.nextID++
	return id
}

func (t *memTx) InsertGame(ctx context.Context, g *models.Game) error {
	for _, ex := range t.st.games {
		if ex.Code == g.Code {
			return ErrDuplicate
		}
	}
	g.ID = t.id()
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	t.st.games[g.ID] = cloneGame(g)
	return nil
}

func (t *memTx) GetGameForUpdate(ctx context.Context, gameID int64) (*models.Game, error) {
	if g, ok := t.st.games[gameID]; ok {
		return cloneGame(g), nil
	}
	return nil, nil
}

func (t *memTx) GetGameByCodeForUpdate(ctx context.Context, code string) (*models.Game, error) {
	for _, g := range t.st.games {
		if g.Code == code {
			return cloneGame(g), nil
		}
	}
	return nil, nil
}

func (t *memTx) UpdateGame(ctx context.Context, g *models.Game) error {
	g.UpdatedAt = time.Now()
	t.st.games[g.ID] = cloneGame(g)
	return nil
}

func (t *memTx) InsertPlayer(ctx context.Context, p *models.GamePlayer) error {
	for _, ex := range t.st.players {
		if ex.GameID == p.GameID && ex.UserID == p.UserID {
			return ErrDuplicate
		}
	}
	p.ID = t.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	t.st.players[p.ID] = clonePlayer(p)
	return nil
}

func (t *memTx) GetPlayerForUpdate(ctx context.Context, gameID, userID int64) (*models.GamePlayer, error) {
	for _, p := range t.st.players {
		if p.GameID == gameID && p.UserID == userID {
			return clonePlayer(p), nil
		}
	}
	return nil, nil
}

func (t *memTx) GetPlayersByGameID(ctx context.Context, gameID int64) ([]*models.GamePlayer, error) {
	var out []*models.GamePlayer
	for _, p := range t.st.players {
		if p.GameID == gameID {
			out = append(out, clonePlayer(p))
		}
	}
	sortBy(out, func(a, b *models.GamePlayer) bool { return a.TurnOrder < b.TurnOrder })
	return out, nil
}

func (t *memTx) UpdatePlayer(ctx context.Context, p *models.GamePlayer) error {
	p.UpdatedAt = time.Now()
	t.st.players[p.ID] = clonePlayer(p)
	return nil
}

func (t *memTx) InsertOwnership(ctx context.Context, gp *models.GameProperty) error {
	for _, ex := range t.st.properties {
		if ex.GameID == gp.GameID && ex.PropertyID == gp.PropertyID {
			return ErrDuplicate
		}
	}
	gp.ID = t.id()
	gp.CreatedAt = time.Now()
	gp.UpdatedAt = gp.CreatedAt
	t.st.properties[gp.ID] = cloneProperty(gp)
	return nil
}

func (t *memTx) GetOwnership(ctx context.Context, gameID int64, propertyID int) (*models.GameProperty, error) {
	for _, gp := range t.st.properties {
		if gp.GameID == gameID && gp.PropertyID == propertyID {
			return cloneProperty(gp), nil
		}
	}
	return nil, nil
}

func (t *memTx) GetOwnershipByID(ctx context.Context, id int64) (*models.GameProperty, error) {
	if gp, ok := t.st.properties[id]; ok {
		return cloneProperty(gp), nil
	}
	return nil, nil
}

func (t *memTx) GetOwnershipsByGame(ctx context.Context, gameID int64) ([]*models.GameProperty, error) {
	var out []*models.GameProperty
	for _, gp := range t.st.properties {
		if gp.GameID == gameID {
			out = append(out, cloneProperty(gp))
		}
	}
	sortBy(out, func(a, b *models.GameProperty) bool { return a.PropertyID < b.PropertyID })
	return out, nil
}

func (t *memTx) UpdateOwnership(ctx context.Context, gp *models.GameProperty) error {
	gp.UpdatedAt = time.Now()
	t.st.properties[gp.ID] = cloneProperty(gp)
	return nil
}

func (t *memTx) DeleteOwnershipsByUser(ctx context.Context, gameID, userID int64) error {
	for id, gp := range t.st.properties {
		if gp.GameID == gameID && gp.UserID == userID {
			delete(t.st.properties, id)
		}
	}
	return nil
}

func (t *memTx) InsertTrade(ctx context.Context, tr *models.TradeRequest) error {
	tr.ID = t.id()
	tr.CreatedAt = time.Now()
	tr.UpdatedAt = tr.CreatedAt
	t.st.trades[tr.ID] = cloneTrade(tr)
	return nil
}

func (t *memTx) GetTradeForUpdate(ctx context.Context, id int64) (*models.TradeRequest, error) {
	if tr, ok := t.st.trades[id]; ok {
		return cloneTrade(tr), nil
	}
	return nil, nil
}

func (t *memTx) GetOpenTradesForTarget(ctx context.Context, gameID, targetUserID int64) ([]*models.TradeRequest, error) {
	var out []*models.TradeRequest
	for _, tr := range t.st.trades {
		if tr.GameID == gameID && tr.TargetUserID == targetUserID && tr.Open() {
			out = append(out, cloneTrade(tr))
		}
	}
	sortBy(out, func(a, b *models.TradeRequest) bool { return a.ID < b.ID })
	return out, nil
}

func (t *memTx) GetOpenTradesByGame(ctx context.Context, gameID int64) ([]*models.TradeRequest, error) {
	var out []*models.TradeRequest
	for _, tr := range t.st.trades {
		if tr.GameID == gameID && tr.Open() {
			out = append(out, cloneTrade(tr))
		}
	}
	sortBy(out, func(a, b *models.TradeRequest) bool { return a.ID < b.ID })
	return out, nil
}

func (t *memTx) UpdateTrade(ctx context.Context, tr *models.TradeRequest) error {
	tr.UpdatedAt = time.Now()
	t.st.trades[tr.ID] = cloneTrade(tr)
	return nil
}

func (t *memTx) InsertRemovalVote(ctx context.Context, v *models.RemovalVote) error {
	for _, ex := range t.st.votes {
		if ex.GameID == v.GameID && ex.TargetUserID == v.TargetUserID && ex.VoterUserID == v.VoterUserID {
			return ErrDuplicate
		}
	}
	v.ID = t.id()
	v.CreatedAt = time.Now()
	cp := *v
	t.st.votes[v.ID] = &cp
	return nil
}

func (t *memTx) CountRemovalVotes(ctx context.Context, gameID, targetUserID int64) (int, error) {
	n := 0
	for _, v := range t.st.votes {
		if v.GameID == gameID && v.TargetUserID == targetUserID {
			n++
		}
	}
	return n, nil
}

func (s memState) clone() memState {
	out := memState{
		nextID:     s.nextID,
		games:      make(map[int64]*models.Game, len(s.games)),
		players:    make(map[int64]*models.GamePlayer, len(s.players)),
		properties: make(map[int64]*models.GameProperty, len(s.properties)),
		trades:     make(map[int64]*models.TradeRequest, len(s.trades)),
		votes:      make(map[int64]*models.RemovalVote, len(s.votes)),
	}
	for id, g := range s.games {
		out.games[id] = cloneGame(g)
	}
	for id, p := range s.players {
		out.players[id] = clonePlayer(p)
	}
	for id, gp := range s.properties {
		out.properties[id] = cloneProperty(gp)
	}
	for id, tr := range s.trades {
		out.trades[id] = cloneTrade(tr)
	}
	for id, v := range s.votes {
		cp := *v
		out.votes[id] = &cp
	}
	return out
}

func cloneGame(g *models.Game) *models.Game {
	cp := *g
	return &cp
}

func clonePlayer(p *models.GamePlayer) *models.GamePlayer {
	cp := *p
	return &cp
}

func cloneProperty(gp *models.GameProperty) *models.GameProperty {
	cp := *gp
	return &cp
}

func cloneTrade(tr *models.TradeRequest) *models.TradeRequest {
	cp := *tr
	cp.OfferedPropertyIDs = append([]int(nil), tr.OfferedPropertyIDs...)
	cp.RequestedPropertyIDs = append([]int(nil), tr.RequestedPropertyIDs...)
	return &cp
}

func sortBy[T any](s []T, less func(a, b T) bool) {
	sort.Slice(s, func(i, j int) bool { return less(s[i], s[j]) })
}
