package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradebridge/internal/models"
	"tradebridge/internal/notify"
	"tradebridge/internal/repository"
	"tradebridge/internal/signal"
)

// fakeRepo stores strategies as encoded documents so every load hands the
// processor an independent copy, the way a real store does. That makes lost
// read-modify-write updates observable.
type fakeRepo struct {
	mu         sync.Mutex
	strategies map[string][]byte
	logs       []models.SignalLog
	saveErr    error
	saves      int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{strategies: map[string][]byte{}}
}

func (f *fakeRepo) put(t *testing.T, st *models.Strategy) {
	t.Helper()
	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("encode strategy: %v", err)
	}
	f.mu.Lock()
	f.strategies[st.ID] = raw
	f.mu.Unlock()
}

func (f *fakeRepo) GetStrategy(_ context.Context, id string) (*models.Strategy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.strategies[id]
	if !ok {
		return nil, nil
	}
	var st models.Strategy
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (f *fakeRepo) SaveStrategy(_ context.Context, item *models.Strategy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	f.strategies[item.ID] = raw
	f.saves++
	return nil
}

func (f *fakeRepo) InsertSignalLog(_ context.Context, item *models.SignalLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *item)
	return nil
}

func (f *fakeRepo) ListStrategies(context.Context) ([]models.Strategy, error) { return nil, nil }
func (f *fakeRepo) CreateStrategy(context.Context, *models.Strategy) error    { return nil }
func (f *fakeRepo) DeleteStrategy(context.Context, string) (bool, error)      { return false, nil }
func (f *fakeRepo) UpdateStrategyConfig(context.Context, string, repository.StrategyConfigUpdate) (bool, error) {
	return false, nil
}
func (f *fakeRepo) SetStrategyActive(context.Context, string, bool) (bool, error) {
	return false, nil
}
func (f *fakeRepo) ListSignalLogs(context.Context, repository.ListSignalLogsParams) ([]models.SignalLog, error) {
	return nil, nil
}
func (f *fakeRepo) CountSignalLogs(context.Context, repository.ListSignalLogsParams) (int64, error) {
	return 0, nil
}
func (f *fakeRepo) DeleteSignalLogsBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeDispatcher struct {
	mu         sync.Mutex
	deliveries []notify.Delivery
}

func (f *fakeDispatcher) Dispatch(del notify.Delivery) {
	f.mu.Lock()
	f.deliveries = append(f.deliveries, del)
	f.mu.Unlock()
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deliveries)
}

func TestProcessAcceptPersistsAndNotifies(t *testing.T) {
	repo := newFakeRepo()
	repo.put(t, newStrategy("S1"))
	dispatcher := &fakeDispatcher{}
	p := &Processor{Repo: repo, Notify: dispatcher}

	res, err := p.Process(context.Background(), sig("S1", "RELIANCE", signal.ActionBuy, "100.50", "t1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != Accept {
		t.Fatalf("outcome = %v, want Accept", res.Outcome)
	}

	stored, err := repo.GetStrategy(context.Background(), "S1")
	if err != nil || stored == nil {
		t.Fatalf("reload strategy: %v", err)
	}
	if len(stored.Positions()) != 1 || stored.LastSignal != signal.ActionBuy {
		t.Fatalf("persisted state wrong: positions=%d last=%q", len(stored.Positions()), stored.LastSignal)
	}
	if dispatcher.count() != 1 {
		t.Fatalf("deliveries = %d, want 1", dispatcher.count())
	}
	if len(repo.logs) != 1 || repo.logs[0].Outcome != "accepted" {
		t.Fatalf("audit logs = %+v, want one accepted row", repo.logs)
	}
}

func TestProcessDuplicateDoesNotWriteStrategy(t *testing.T) {
	repo := newFakeRepo()
	st := newStrategy("S1")
	st.LastSignal = signal.ActionBuy
	repo.put(t, st)
	dispatcher := &fakeDispatcher{}
	p := &Processor{Repo: repo, Notify: dispatcher}

	res, err := p.Process(context.Background(), sig("S1", "RELIANCE", signal.ActionBuy, "101.00", "t2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != IgnoreDuplicate {
		t.Fatalf("outcome = %v, want IgnoreDuplicate", res.Outcome)
	}
	if repo.saves != 0 {
		t.Fatalf("strategy writes = %d, want 0 on ignored signal", repo.saves)
	}
	if dispatcher.count() != 0 {
		t.Fatalf("ignored signal must not notify")
	}
	if len(repo.logs) != 1 || repo.logs[0].Outcome != "ignored_duplicate" {
		t.Fatalf("audit logs = %+v, want one ignored_duplicate row", repo.logs)
	}
}

func TestProcessNotFound(t *testing.T) {
	repo := newFakeRepo()
	p := &Processor{Repo: repo}

	res, err := p.Process(context.Background(), sig("ghost", "XYZ", signal.ActionBuy, "1", "t1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != RejectNotFound {
		t.Fatalf("outcome = %v, want RejectNotFound", res.Outcome)
	}
	if repo.saves != 0 {
		t.Fatalf("unknown strategy must not write")
	}
}

func TestProcessPersistenceFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.put(t, newStrategy("S1"))
	repo.saveErr = errors.New("disk full")
	dispatcher := &fakeDispatcher{}
	p := &Processor{Repo: repo, Notify: dispatcher}

	_, err := p.Process(context.Background(), sig("S1", "XYZ", signal.ActionBuy, "10", "t1"))
	if err == nil {
		t.Fatalf("expected persistence error")
	}

	// The mutation is not committed: a reload sees the untouched record.
	stored, _ := repo.GetStrategy(context.Background(), "S1")
	if len(stored.Positions()) != 0 || stored.LastSignal != "" {
		t.Fatalf("failed save leaked state: %+v", stored)
	}
	if dispatcher.count() != 0 {
		t.Fatalf("failed save must not notify")
	}
}

func TestProcessSerializesPerStrategy(t *testing.T) {
	repo := newFakeRepo()
	repo.put(t, newStrategy("S1"))
	p := &Processor{Repo: repo}

	const workers = 40
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			symbol := fmt.Sprintf("SYM-%02d", i)
			open := sig("S1", symbol, signal.ActionBuy, "100.50", "t1")
			open.Origin = signal.OriginManual
			if _, err := p.Process(context.Background(), open); err != nil {
				t.Errorf("open %s: %v", symbol, err)
				return
			}
			closeSig := sig("S1", symbol, signal.ActionClose, "105.75", "t2")
			closeSig.Origin = signal.OriginManual
			if _, err := p.Process(context.Background(), closeSig); err != nil {
				t.Errorf("close %s: %v", symbol, err)
			}
		}(i)
	}
	wg.Wait()

	stored, err := repo.GetStrategy(context.Background(), "S1")
	if err != nil || stored == nil {
		t.Fatalf("reload strategy: %v", err)
	}
	if len(stored.Positions()) != 0 {
		t.Fatalf("open positions = %d, want 0", len(stored.Positions()))
	}
	completed := stored.Completed()
	if len(completed) != workers {
		t.Fatalf("completed trades = %d, want %d (lost updates)", len(completed), workers)
	}
	want := decimal.RequireFromString("5.25").Mul(decimal.NewFromInt(workers))
	if !stored.PnL.Equal(want) {
		t.Fatalf("pnl = %s, want %s", stored.PnL, want)
	}
	sum := decimal.Zero
	for _, trade := range completed {
		sum = sum.Add(trade.PnL)
	}
	if !stored.PnL.Equal(sum) {
		t.Fatalf("pnl invariant broken: %s != %s", stored.PnL, sum)
	}
}
