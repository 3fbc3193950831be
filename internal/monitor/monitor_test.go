package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SafeHer/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
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

type fakeStore struct {
	mu      sync.Mutex
	journey *model.Journey
	updates []map[string]interface{}
}

func (s *fakeStore) GetActiveJourney(ctx context.Context, userID int64) (*model.Journey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.journey == nil || !s.journey.IsMonitorable() {
		return nil, nil
	}
	copied := *s.journey
	return &copied, nil
}

func (s *fakeStore) UpdateJourney(ctx context.Context, journeyID int64, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates = append(s.updates, fields)
	if s.journey == nil || s.journey.ID != journeyID {
		return nil
	}

	if v, ok := fields["status"]; ok {
		s.journey.Status = v.(model.JourneyStatus)
	}
	if v, ok := fields["last_check_in"]; ok {
		t := v.(time.Time)
		s.journey.LastCheckIn = &t
	}
	if v, ok := fields["next_check_in"]; ok {
		t := v.(time.Time)
		s.journey.NextCheckIn = &t
	}
	return nil
}

func (s *fakeStore) status() model.JourneyStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journey.Status
}

type fakeEmitter struct {
	mu     sync.Mutex
	alerts []model.AlertType
}

func (e *fakeEmitter) CreateAlert(ctx context.Context, userID int64, journeyID *int64, alertType model.AlertType, lat, lng *float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alerts = append(e.alerts, alertType)
	return nil
}

func (e *fakeEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.alerts)
}

func newTestMonitor(t *testing.T, intervalMinutes int) (*Monitor, *fakeClock, *fakeStore, *fakeEmitter) {
	t.Helper()

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	next := start.Add(time.Duration(intervalMinutes) * time.Minute)
	store := &fakeStore{
		journey: &model.Journey{
			BaseModel:              model.BaseModel{ID: 42},
			UserID:                 7,
			Destination:            "home",
			StartTime:              start,
			CheckInIntervalMinutes: intervalMinutes,
			NextCheckIn:            &next,
			Status:                 model.JourneyStatusActive,
		},
	}
	emitter := &fakeEmitter{}

	m := New(7, store, emitter, Options{Clock: clock})
	require.NoError(t, m.Reload(context.Background()))

	return m, clock, store, emitter
}

func waitForEscalation(t *testing.T, e *fakeEmitter, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.count() >= want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCountdownDecreases(t *testing.T) {
	m, clock, _, _ := newTestMonitor(t, 15)

	prev := m.Snapshot().RemainingSeconds
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		m.step()
		cur := m.Snapshot().RemainingSeconds
		assert.Equal(t, prev-1, cur)
		prev = cur
	}
}

func TestCheckInResetsDeadline(t *testing.T) {
	m, clock, store, _ := newTestMonitor(t, 15)

	clock.Advance(10 * time.Minute)
	m.step()

	require.NoError(t, m.CheckIn(context.Background()))

	store.mu.Lock()
	j := store.journey
	require.NotNil(t, j.LastCheckIn)
	require.NotNil(t, j.NextCheckIn)
	assert.Equal(t, clock.Now(), *j.LastCheckIn)
	assert.Equal(t, clock.Now().Add(15*time.Minute), *j.NextCheckIn)
	store.mu.Unlock()

	snap := m.Snapshot()
	assert.Equal(t, StateAwaiting, snap.State)
	assert.Equal(t, 0, snap.MissedCheckIns)
	assert.False(t, snap.ShowPrompt)
}

func TestDuePromptShownOnce(t *testing.T) {
	var mu sync.Mutex
	shown := 0

	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	next := start.Add(15 * time.Minute)
	store := &fakeStore{
		journey: &model.Journey{
			BaseModel:              model.BaseModel{ID: 42},
			UserID:                 7,
			StartTime:              start,
			CheckInIntervalMinutes: 15,
			NextCheckIn:            &next,
			Status:                 model.JourneyStatusActive,
		},
	}

	m := New(7, store, &fakeEmitter{}, Options{
		Clock: clock,
		Prompt: func(show bool) {
			if show {
				mu.Lock()
				shown++
				mu.Unlock()
			}
		},
	})
	require.NoError(t, m.Reload(context.Background()))

	clock.Advance(15 * time.Minute)
	m.step()
	assert.Equal(t, StateDue, m.Snapshot().State)

	// 到期窗口内继续 tick，提示不重复触发
	for i := 0; i < 20; i++ {
		clock.Advance(time.Second)
		m.step()
	}

	mu.Lock()
	assert.Equal(t, 1, shown)
	mu.Unlock()
}

func TestMissedEscalation(t *testing.T) {
	m, clock, store, emitter := newTestMonitor(t, 15)

	clock.Advance(15*time.Minute + 2*time.Minute)
	m.step()

	waitForEscalation(t, emitter, 1)
	assert.Equal(t, []model.AlertType{model.AlertTypeMissedCheckIn}, emitter.alerts)
	assert.Equal(t, model.JourneyStatusAlert, store.status())

	snap := m.Snapshot()
	assert.Equal(t, StateMissed, snap.State)
	assert.Equal(t, 1, snap.MissedCheckIns)
	assert.Equal(t, int64(0), snap.RemainingSeconds)
}

func TestEscalationOncePerEpisode(t *testing.T) {
	m, clock, _, emitter := newTestMonitor(t, 15)

	// 第一次错过
	clock.Advance(17 * time.Minute)
	m.step()
	waitForEscalation(t, emitter, 1)

	// 同一错过周期持续 tick，不重复升级
	for i := 0; i < 10; i++ {
		clock.Advance(time.Minute)
		m.step()
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, emitter.count())

	// 打卡开启新周期，再次错过再升级一次
	require.NoError(t, m.CheckIn(context.Background()))
	assert.Equal(t, 0, m.Snapshot().MissedCheckIns)

	clock.Advance(17 * time.Minute)
	m.step()
	waitForEscalation(t, emitter, 2)
}

func TestMissedAlertCap(t *testing.T) {
	m, clock, _, emitter := newTestMonitor(t, 15)

	// 计数已达上限时进入错过状态不再升级
	m.mu.Lock()
	m.missedCheckIns = MaxMissedAlerts
	m.mu.Unlock()

	clock.Advance(17 * time.Minute)
	m.step()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, emitter.count())
	assert.Equal(t, StateMissed, m.Snapshot().State)
}

func TestEndTripIdempotent(t *testing.T) {
	m, clock, store, emitter := newTestMonitor(t, 15)

	require.NoError(t, m.End(context.Background()))
	assert.Equal(t, model.JourneyStatusCompleted, store.status())

	// 幂等：重复结束不报错
	require.NoError(t, m.End(context.Background()))

	// 结束后继续 tick，不产生提示或告警
	clock.Advance(time.Hour)
	m.step()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 0, emitter.count())
	snap := m.Snapshot()
	assert.Equal(t, StateAwaiting, snap.State)
	assert.False(t, snap.ShowPrompt)
}

func TestSyntheticDeadlineFallback(t *testing.T) {
	m, clock, store, _ := newTestMonitor(t, 15)

	store.mu.Lock()
	store.journey.NextCheckIn = nil
	store.mu.Unlock()
	require.NoError(t, m.Reload(context.Background()))

	// next_check_in 缺失时回退到 start_time + interval
	assert.Equal(t, int64(15*60), m.Snapshot().RemainingSeconds)

	clock.Advance(15 * time.Minute)
	m.step()
	assert.Equal(t, StateDue, m.Snapshot().State)
}

func TestEscalationScenario(t *testing.T) {
	m, clock, store, emitter := newTestMonitor(t, 15)

	// t0+15m：到期，展示提示
	clock.Advance(15 * time.Minute)
	m.step()
	snap := m.Snapshot()
	assert.Equal(t, StateDue, snap.State)
	assert.True(t, snap.ShowPrompt)
	assert.Equal(t, 0, emitter.count())

	// t0+17m：错过，升级一次
	clock.Advance(2 * time.Minute)
	m.step()
	waitForEscalation(t, emitter, 1)
	assert.Equal(t, model.JourneyStatusAlert, store.status())

	// t0+19m：同一错过周期，不再产生新告警
	clock.Advance(2 * time.Minute)
	m.step()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, emitter.count())
}

func TestNoTickWithoutJourney(t *testing.T) {
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	store := &fakeStore{}
	emitter := &fakeEmitter{}

	m := New(7, store, emitter, Options{Clock: clock})
	require.NoError(t, m.Reload(context.Background()))

	clock.Advance(time.Hour)
	m.step()

	assert.Equal(t, 0, emitter.count())
	assert.Equal(t, StateAwaiting, m.Snapshot().State)
}

func TestManagerLifecycle(t *testing.T) {
	store := &fakeStore{}
	emitter := &fakeEmitter{}
	mgr := NewManager(store, emitter, nil)
	defer mgr.Shutdown()

	ctx := context.Background()
	m1 := mgr.Ensure(ctx, 7)
	m2 := mgr.Ensure(ctx, 7)
	assert.Same(t, m1, m2)

	assert.Nil(t, mgr.Get(8))

	mgr.Remove(7)
	assert.Nil(t, mgr.Get(7))
}
