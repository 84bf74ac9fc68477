package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dicehall/domain/entities"
	"dicehall/domain/interfaces"
	"dicehall/domain/utils"
)

type memLedger struct {
	mu       sync.Mutex
	balances map[int64]int64
	changes  []interfaces.LedgerChange
}

func newMemLedger(balances map[int64]int64) *memLedger {
	return &memLedger{balances: balances}
}

func (l *memLedger) GetBalance(_ context.Context, _, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID], nil
}

func (l *memLedger) SetBalance(_ context.Context, _, userID, balance int64, change interfaces.LedgerChange) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] = balance
	l.changes = append(l.changes, change)
	return nil
}

func (l *memLedger) balance(userID int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

func (l *memLedger) countChanges(txType entities.TransactionType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, change := range l.changes {
		if change.Type == txType {
			n++
		}
	}
	return n
}

type memStore struct {
	mu      sync.Mutex
	rows    map[int64]entities.SessionSnapshot
	saves   int
	deletes int
	saveErr error
	findErr error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int64]entities.SessionSnapshot)}
}

func (s *memStore) Save(_ context.Context, snapshot *entities.SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.rows[snapshot.ChannelID] = *snapshot
	return nil
}

func (s *memStore) Delete(_ context.Context, channelID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	delete(s.rows, channelID)
	return nil
}

func (s *memStore) FindActiveByGameKind(_ context.Context, kind entities.GameKind) ([]*entities.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []*entities.SessionSnapshot
	for _, row := range s.rows {
		if row.Kind == kind && row.Active {
			row := row
			out = append(out, &row)
		}
	}
	return out, nil
}

func (s *memStore) row(channelID int64) (entities.SessionSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[channelID]
	return row, ok
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type memJackpots struct {
	mu       sync.Mutex
	pools    map[int64]int64
	drainErr error
}

func newMemJackpots() *memJackpots {
	return &memJackpots{pools: make(map[int64]int64)}
}

func (j *memJackpots) Get(_ context.Context, guildID int64) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pools[guildID], nil
}

func (j *memJackpots) Add(_ context.Context, guildID, delta int64) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pools[guildID] += delta
	return j.pools[guildID], nil
}

func (j *memJackpots) Drain(_ context.Context, guildID int64) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.drainErr != nil {
		return 0, j.drainErr
	}
	amount := j.pools[guildID]
	j.pools[guildID] = 0
	return amount, nil
}

func (j *memJackpots) amount(guildID int64) int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pools[guildID]
}

type recordingPresenter struct {
	mu        sync.Mutex
	boards    []BoardView
	results   []ResultView
	restores  []entities.SessionSnapshot
	boardErr  error
	resultErr error
}

func (p *recordingPresenter) ShowBoard(_ context.Context, view BoardView) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.boards = append(p.boards, view)
	if p.boardErr != nil {
		return "", p.boardErr
	}
	if view.MessageRef != "" {
		return view.MessageRef, nil
	}
	return fmt.Sprintf("board-%d", len(p.boards)), nil
}

func (p *recordingPresenter) ShowResult(_ context.Context, view ResultView) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, view)
	return p.resultErr
}

func (p *recordingPresenter) AnnounceRestore(_ context.Context, snapshot entities.SessionSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.restores = append(p.restores, snapshot)
	return nil
}

func (p *recordingPresenter) boardCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.boards)
}

func (p *recordingPresenter) lastResult() (ResultView, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.results) == 0 {
		return ResultView{}, false
	}
	return p.results[len(p.results)-1], true
}

type fixedRoller struct {
	mu    sync.Mutex
	faces []int
}

func (r *fixedRoller) set(faces ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faces = faces
}

func (r *fixedRoller) Roll(size int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.faces[0], nil
}

func (r *fixedRoller) RollN(count, size int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.faces) < count {
		return nil, errors.New("not enough scripted faces")
	}
	out := make([]int, count)
	copy(out, r.faces)
	return out, nil
}

type nameBook map[int64]string

func (b nameBook) DisplayName(_ context.Context, _, userID int64) (string, error) {
	name, ok := b[userID]
	if !ok {
		return "", errors.New("unknown member")
	}
	return name, nil
}

type harness struct {
	registry  *Registry
	ledger    *memLedger
	store     *memStore
	jackpots  *memJackpots
	presenter *recordingPresenter
	roller    *fixedRoller
}

func newHarness(balances map[int64]int64) *harness {
	h := &harness{
		ledger:    newMemLedger(balances),
		store:     newMemStore(),
		jackpots:  newMemJackpots(),
		presenter: &recordingPresenter{},
		roller:    &fixedRoller{faces: []int{1, 2, 3}},
	}
	h.registry = NewRegistry(Dependencies{
		Wallet:    utils.NewWallet(h.ledger),
		Store:     h.store,
		Jackpots:  NewJackpotPool(h.jackpots),
		Presenter: h.presenter,
		Identity:  nameBook{1: "Alice", 2: "Bob"},
		Roller:    h.roller,
		Timing:    DefaultTiming(),
	})
	return h
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.registry.TickAll()
	}
}
