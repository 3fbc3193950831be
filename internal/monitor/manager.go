package monitor

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Manager 按用户维护监控器，行程开始时装载、结束时回收
type Manager struct {
	store   Store
	emitter AlertEmitter
	log     *zap.Logger

	mu       sync.Mutex
	monitors map[int64]*Monitor
}

func NewManager(store Store, emitter AlertEmitter, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}

	return &Manager{
		store:    store,
		emitter:  emitter,
		log:      log,
		monitors: make(map[int64]*Monitor),
	}
}

// Ensure 返回用户的监控器，不存在时创建并启动
func (mgr *Manager) Ensure(ctx context.Context, userID int64) *Monitor {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if m, ok := mgr.monitors[userID]; ok {
		return m
	}

	m := New(userID, mgr.store, mgr.emitter, Options{
		Logger: mgr.log,
	})
	mgr.monitors[userID] = m
	m.Start(ctx)

	return m
}

// Get 返回用户的监控器，不存在时返回 nil
func (mgr *Manager) Get(userID int64) *Monitor {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	return mgr.monitors[userID]
}

// Remove 停止并移除用户的监控器
func (mgr *Manager) Remove(userID int64) {
	mgr.mu.Lock()
	m, ok := mgr.monitors[userID]
	if ok {
		delete(mgr.monitors, userID)
	}
	mgr.mu.Unlock()

	if ok {
		m.Stop()
	}
}

// Shutdown 停止全部监控器
func (mgr *Manager) Shutdown() {
	mgr.mu.Lock()
	monitors := make([]*Monitor, 0, len(mgr.monitors))
	for _, m := range mgr.monitors {
		monitors = append(monitors, m)
	}
	mgr.monitors = make(map[int64]*Monitor)
	mgr.mu.Unlock()

	for _, m := range monitors {
		m.Stop()
	}
}
