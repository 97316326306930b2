package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dlremindme/internal/clock"
	"dlremindme/internal/session"
	"dlremindme/internal/storage"
	"dlremindme/internal/task"
	"dlremindme/internal/tracker"
)

const alice = "alice@example.com"

var zone = clock.DefaultZone

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticTasks map[string][]*task.Task

func (s staticTasks) TasksFor(ownerID string) []*task.Task {
	return s[ownerID]
}

type sent struct {
	to   string
	name string
	tier task.Tier
}

type recordingNotifier struct {
	mu      sync.Mutex
	fail    bool
	panicOn string
	calls   []sent
}

func (n *recordingNotifier) SendDeadlineReminder(_ context.Context, to, name string, _ time.Time, tier task.Tier) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if name == n.panicOn {
		panic("boom")
	}
	n.calls = append(n.calls, sent{to: to, name: name, tier: tier})
	return !n.fail
}

func (n *recordingNotifier) tiers() []task.Tier {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []task.Tier
	for _, c := range n.calls {
		out = append(out, c.tier)
	}
	return out
}

type fixture struct {
	engine   *Engine
	clock    *clock.Manual
	tracker  *tracker.Tracker
	notifier *recordingNotifier
}

func newFixture(t *testing.T, now time.Time, tasks staticTasks) *fixture {
	t.Helper()
	tr, err := tracker.New(nil, discardLogger())
	require.NoError(t, err)
	clk := clock.NewManual(now)
	n := &recordingNotifier{}
	return &fixture{
		engine:   New(tasks, session.New(alice), clk, tr, n, discardLogger()),
		clock:    clk,
		tracker:  tr,
		notifier: n,
	}
}

func baseTime() time.Time {
	return time.Date(2025, 5, 21, 8, 0, 0, 0, zone)
}

func TestTierThreeSentIffWithinThreeHours(t *testing.T) {
	now := baseTime()
	cases := []struct {
		name     string
		left     time.Duration
		wantSent bool
	}{
		{"well before", 5 * time.Hour, false},
		{"one second early", 3*time.Hour + time.Second, false},
		{"exactly three hours", 3 * time.Hour, true},
		{"inside window", 2*time.Hour + 59*time.Minute, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tk := task.NewTask("t1", "Essay", now.Add(tc.left))
			f := newFixture(t, now, staticTasks{alice: {tk}})
			f.engine.Scan(context.Background())
			assert.Equal(t, tc.wantSent, f.tracker.Contains("t1", task.TierThreeHours))
			assert.False(t, f.tracker.Contains("t1", task.TierOneHour))
		})
	}
}

func TestScanSendsEachTierOnce(t *testing.T) {
	now := baseTime()
	tk := task.NewTask("t1", "Essay", now.Add(2*time.Hour+30*time.Minute))
	f := newFixture(t, now, staticTasks{alice: {tk}})

	for i := 0; i < 5; i++ {
		f.engine.Scan(context.Background())
	}
	assert.Equal(t, []task.Tier{task.TierThreeHours}, f.notifier.tiers())
	assert.Equal(t, alice, f.notifier.calls[0].to)
}

func TestScanCatchesUpMissedTiers(t *testing.T) {
	now := baseTime()
	tk := task.NewTask("t1", "Essay", now.Add(90*time.Minute))
	f := newFixture(t, now, staticTasks{alice: {tk}})

	res := f.engine.Scan(context.Background())
	assert.Equal(t, Result{Tasks: 1, Sent: 2}, res)
	assert.Equal(t, []task.Tier{task.TierThreeHours, task.TierTwoHours}, f.notifier.tiers())
	assert.False(t, f.tracker.Contains("t1", task.TierOneHour))
}

func TestScanSkipsOverdueTasks(t *testing.T) {
	now := baseTime()
	tasks := staticTasks{alice: {
		task.NewTask("past", "Past", now.Add(-time.Minute)),
		task.NewTask("now", "Now", now),
	}}
	f := newFixture(t, now, tasks)

	res := f.engine.Scan(context.Background())
	assert.Equal(t, 2, res.Tasks)
	assert.Zero(t, res.Sent)
	assert.Empty(t, f.notifier.tiers())
	assert.Zero(t, f.tracker.Len(), "tiers missed before the deadline are never sent")
}

func TestScanOneHourTierAcrossScans(t *testing.T) {
	now := baseTime()
	tk := task.NewTask("t1", "Essay", now.Add(time.Hour+time.Minute))
	f := newFixture(t, now, staticTasks{alice: {tk}})

	f.engine.Scan(context.Background())
	require.Equal(t, []task.Tier{task.TierThreeHours, task.TierTwoHours}, f.notifier.tiers())

	f.clock.Advance(2 * time.Minute)
	f.engine.Scan(context.Background())
	f.engine.Scan(context.Background())
	assert.Equal(t, []task.Tier{task.TierThreeHours, task.TierTwoHours, task.TierOneHour}, f.notifier.tiers())
}

func TestScanRetriesFailedSend(t *testing.T) {
	now := baseTime()
	tk := task.NewTask("t1", "Essay", now.Add(150*time.Minute))
	f := newFixture(t, now, staticTasks{alice: {tk}})
	f.notifier.fail = true

	res := f.engine.Scan(context.Background())
	assert.Equal(t, 1, res.Failed)
	assert.False(t, f.tracker.Contains("t1", task.TierThreeHours))

	f.notifier.fail = false
	res = f.engine.Scan(context.Background())
	assert.Equal(t, 1, res.Sent)
	assert.True(t, f.tracker.Contains("t1", task.TierThreeHours))
	assert.Len(t, f.notifier.tiers(), 2)
}

func TestScanIsolatesTaskPanics(t *testing.T) {
	now := baseTime()
	tasks := staticTasks{alice: {
		task.NewTask("bad", "explodes", now.Add(time.Hour)),
		task.NewTask("good", "Essay", now.Add(2*time.Hour+30*time.Minute)),
	}}
	f := newFixture(t, now, tasks)
	f.notifier.panicOn = "explodes"

	var res Result
	require.NotPanics(t, func() { res = f.engine.Scan(context.Background()) })
	assert.Equal(t, 2, res.Tasks)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, f.tracker.Contains("good", task.TierThreeHours))
}

func TestScanSkipsUnparseableDeadline(t *testing.T) {
	now := baseTime()
	broken, err := task.FromRecord(task.Record{ID: "b1", Name: "broken", Deadline: "someday"}, zone)
	require.Error(t, err)
	f := newFixture(t, now, staticTasks{alice: {broken, task.NewTask("t1", "Essay", now.Add(time.Hour))}})

	res := f.engine.Scan(context.Background())
	assert.Equal(t, 2, res.Tasks)
	assert.Equal(t, 3, res.Sent)
}

func TestScanWithoutOwner(t *testing.T) {
	now := baseTime()
	tr, err := tracker.New(nil, discardLogger())
	require.NoError(t, err)
	n := &recordingNotifier{}
	tasks := staticTasks{alice: {task.NewTask("t1", "Essay", now.Add(time.Hour))}}
	e := New(tasks, session.New(""), clock.NewManual(now), tr, n, discardLogger())

	assert.Equal(t, Result{}, e.Scan(context.Background()))
	assert.Empty(t, n.tiers())
}

func TestScanOnlyActiveOwner(t *testing.T) {
	now := baseTime()
	tasks := staticTasks{
		alice:             {task.NewTask("a1", "Alice", now.Add(time.Hour))},
		"bob@example.com": {task.NewTask("b1", "Bob", now.Add(time.Hour))},
	}
	f := newFixture(t, now, tasks)
	f.engine.Scan(context.Background())
	for _, c := range f.notifier.calls {
		assert.Equal(t, alice, c.to)
	}
	assert.False(t, f.tracker.Contains("b1", task.TierOneHour))
}

func TestTrackerSurvivesRestart(t *testing.T) {
	now := baseTime()
	journal := storage.NewMemoryStorage()
	tasks := staticTasks{alice: {task.NewTask("t1", "Essay", now.Add(150*time.Minute))}}

	tr, err := tracker.New(journal, discardLogger())
	require.NoError(t, err)
	first := &recordingNotifier{}
	New(tasks, session.New(alice), clock.NewManual(now), tr, first, discardLogger()).Scan(context.Background())
	require.Len(t, first.tiers(), 1)

	restarted, err := tracker.New(journal, discardLogger())
	require.NoError(t, err)
	second := &recordingNotifier{}
	New(tasks, session.New(alice), clock.NewManual(now), restarted, second, discardLogger()).Scan(context.Background())
	assert.Empty(t, second.tiers())
}

func TestScanConcurrentWithAdd(t *testing.T) {
	const n = 50
	now := baseTime()
	backend := storage.NewFileStorageFs(afero.NewMemMapFs(), "/tasks.json", "/sent.json")
	store := storage.NewTaskStore(backend, zone, discardLogger())
	tr, err := tracker.New(backend, discardLogger())
	require.NoError(t, err)
	n1 := &recordingNotifier{}
	e := New(store, session.New(alice), clock.NewManual(now), tr, n1, discardLogger())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_, err := store.Add(alice, fmt.Sprintf("task-%d", i), now.Add(90*time.Minute))
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			e.Scan(context.Background())
		}
	}()
	wg.Wait()
	e.Scan(context.Background())

	assert.Len(t, store.TasksFor(alice), n, "no add may be lost")

	perPair := map[sent]int{}
	for _, c := range n1.calls {
		perPair[c]++
	}
	assert.Len(t, perPair, 2*n)
	for pair, count := range perPair {
		assert.Equal(t, 1, count, "%v sent more than once", pair)
		assert.NotEqual(t, task.TierOneHour, pair.tier)
	}

	journal, err := backend.ListSent()
	require.NoError(t, err)
	assert.Len(t, journal, 2*n, "one journal entry per (task, tier)")
}
