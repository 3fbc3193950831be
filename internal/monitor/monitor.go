package monitor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"SafeHer/internal/model"
)

// 打卡监控的时间策略
// 到期后有 30 秒宽限窗口展示打卡提示，超过 120 秒视为错过并升级告警
const (
	TickInterval    = time.Second
	DueGraceWindow  = 30 * time.Second
	MissedDeadline  = 120 * time.Second
	MaxMissedAlerts = 2 // 单次行程最多升级两次，防止告警轰炸

	sideEffectTimeout = 10 * time.Second
)

// State 监控状态机
type State string

const (
	StateAwaiting State = "awaiting" // 距离下次打卡还有时间
	StateDue      State = "due"      // 打卡到期，等待用户确认
	StateMissed   State = "missed"   // 超过硬截止，已错过
)

// Clock 时钟抽象，测试时注入假时钟
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 真实时钟
func SystemClock() Clock { return systemClock{} }

// Store 行程存储契约
// GetActiveJourney 返回用户当前可监控的行程（active 或 alert），无则返回 nil
type Store interface {
	GetActiveJourney(ctx context.Context, userID int64) (*model.Journey, error)
	UpdateJourney(ctx context.Context, journeyID int64, fields map[string]interface{}) error
}

// AlertEmitter 告警发射器契约，只追加不读改
type AlertEmitter interface {
	CreateAlert(ctx context.Context, userID int64, journeyID *int64, alertType model.AlertType, lat, lng *float64) error
}

// PromptSink 打卡提示开关回调，可选
type PromptSink func(show bool)

// Snapshot 对外快照，驱动客户端打卡界面
type Snapshot struct {
	JourneyID        int64
	State            State
	RemainingSeconds int64 // 展示用，已截断为 >= 0
	ShowPrompt       bool
	MissedCheckIns   int
}

// Options 监控器依赖注入
type Options struct {
	Clock  Clock
	Prompt PromptSink
	Logger *zap.Logger
}

// Monitor 单个用户的行程打卡监控器
// 每秒重新评估一次截止时间，状态机见 State 定义
type Monitor struct {
	userID  int64
	store   Store
	emitter AlertEmitter
	clock   Clock
	prompt  PromptSink
	log     *zap.Logger

	mu             sync.Mutex
	journey        *model.Journey
	state          State
	missedCheckIns int
	promptShown    bool // 当前到期周期内是否已展示过提示
	escalated      bool // 当前错过周期内是否已升级
	writeInFlight  bool // 单槽在途写保护，慢写不与下一个 tick 竞争

	cancel context.CancelFunc
	done   chan struct{}
}

// New 创建监控器，journey 可为 nil（稍后 Reload）
func New(userID int64, store Store, emitter AlertEmitter, opts Options) *Monitor {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Monitor{
		userID:  userID,
		store:   store,
		emitter: emitter,
		clock:   opts.Clock,
		prompt:  opts.Prompt,
		log:     opts.Logger,
		state:   StateAwaiting,
	}
}

// Attach 装载一条行程并重置本地计数
func (m *Monitor) Attach(journey *model.Journey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.journey = journey
	m.state = StateAwaiting
	m.missedCheckIns = 0
	m.promptShown = false
	m.escalated = false
}

// Reload 从存储加载当前可监控行程，无行程时清空
func (m *Monitor) Reload(ctx context.Context) error {
	journey, err := m.store.GetActiveJourney(ctx, m.userID)
	if err != nil {
		return fmt.Errorf("failed to load active journey: %w", err)
	}

	m.Attach(journey)
	return nil
}

// Start 启动 1 秒 tick 循环，重复调用无效果
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	done := make(chan struct{})
	m.done = done
	m.mu.Unlock()

	go m.run(runCtx, done)
}

// Stop 停止 tick 循环并等待退出
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.step()
		}
	}
}

// step 单次评估，状态转移与副作用都在这里
func (m *Monitor) step() {
	m.mu.Lock()

	j := m.journey
	if j == nil || !j.IsMonitorable() {
		m.mu.Unlock()
		return
	}

	remaining := m.remainingSecondsLocked()
	next := stateFor(remaining)

	// 进入到期窗口时展示提示，同一周期内只展示一次
	if next != StateAwaiting && !m.promptShown {
		m.promptShown = true
		if m.prompt != nil {
			m.prompt(true)
		}
	}

	var escalateJourney *model.Journey
	if next == StateMissed && !m.escalated {
		m.escalated = true
		if m.missedCheckIns < MaxMissedAlerts && !m.writeInFlight {
			m.missedCheckIns++
			m.writeInFlight = true
			copied := *j
			escalateJourney = &copied
		}
	}

	m.state = next
	m.mu.Unlock()

	if escalateJourney != nil {
		go m.escalate(escalateJourney)
	}
}

// escalate 错过打卡升级：状态置 alert、发告警、刷新行程
// 调用失败只记录日志，tick 循环不中断
func (m *Monitor) escalate(j *model.Journey) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if err := m.store.UpdateJourney(ctx, j.ID, map[string]interface{}{
		"status": model.JourneyStatusAlert,
	}); err != nil {
		m.log.Error("Failed to mark journey as alert",
			zap.Int64("journey_id", j.ID),
			zap.Error(err),
		)
	}

	journeyID := j.ID
	if err := m.emitter.CreateAlert(ctx, j.UserID, &journeyID, model.AlertTypeMissedCheckIn, nil, nil); err != nil {
		m.log.Error("Failed to emit missed check-in alert",
			zap.Int64("journey_id", j.ID),
			zap.Error(err),
		)
	}

	refreshed, err := m.store.GetActiveJourney(ctx, j.UserID)
	if err != nil {
		m.log.Error("Failed to refresh journey after escalation",
			zap.Int64("journey_id", j.ID),
			zap.Error(err),
		)
	}

	m.mu.Lock()
	if refreshed != nil && m.journey != nil && refreshed.ID == m.journey.ID {
		m.journey = refreshed
	}
	m.writeInFlight = false
	m.mu.Unlock()

	m.log.Warn("Missed check-in escalated",
		zap.Int64("journey_id", j.ID),
		zap.Int64("user_id", j.UserID),
	)
}

// CheckIn 用户确认打卡，刷新截止时间并复位计数
func (m *Monitor) CheckIn(ctx context.Context) error {
	m.mu.Lock()
	j := m.journey
	if j == nil || !j.IsMonitorable() {
		m.mu.Unlock()
		return fmt.Errorf("no monitorable journey")
	}
	journeyID := j.ID
	interval := j.CheckInInterval()
	now := m.clock.Now()
	m.mu.Unlock()

	nextCheckIn := now.Add(interval)
	if err := m.store.UpdateJourney(ctx, journeyID, map[string]interface{}{
		"last_check_in": now,
		"next_check_in": nextCheckIn,
		"status":        model.JourneyStatusActive,
	}); err != nil {
		return fmt.Errorf("failed to persist check-in: %w", err)
	}

	m.mu.Lock()
	if m.journey != nil && m.journey.ID == journeyID {
		m.journey.LastCheckIn = &now
		m.journey.NextCheckIn = &nextCheckIn
		m.journey.Status = model.JourneyStatusActive
	}
	m.state = StateAwaiting
	m.missedCheckIns = 0
	m.promptShown = false
	m.escalated = false
	m.mu.Unlock()

	if m.prompt != nil {
		m.prompt(false)
	}

	return nil
}

// End 结束行程，幂等：行程已清空时直接返回
func (m *Monitor) End(ctx context.Context) error {
	m.mu.Lock()
	j := m.journey
	if j == nil {
		m.mu.Unlock()
		return nil
	}
	journeyID := j.ID
	m.mu.Unlock()

	if err := m.store.UpdateJourney(ctx, journeyID, map[string]interface{}{
		"status": model.JourneyStatusCompleted,
	}); err != nil {
		return fmt.Errorf("failed to complete journey: %w", err)
	}

	m.mu.Lock()
	m.journey = nil
	m.state = StateAwaiting
	m.missedCheckIns = 0
	m.promptShown = false
	m.escalated = false
	m.mu.Unlock()

	if m.prompt != nil {
		m.prompt(false)
	}

	return nil
}

// Snapshot 当前状态快照
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.journey == nil {
		return Snapshot{State: StateAwaiting}
	}

	remaining := m.remainingSecondsLocked()
	display := remaining
	if display < 0 {
		display = 0
	}

	return Snapshot{
		JourneyID:        m.journey.ID,
		State:            stateFor(remaining),
		RemainingSeconds: display,
		ShowPrompt:       m.promptShown,
		MissedCheckIns:   m.missedCheckIns,
	}
}

// remainingSecondsLocked 以整秒计算距截止时间的剩余量，可为负
// next_check_in 缺失时回退到 start_time + interval
func (m *Monitor) remainingSecondsLocked() int64 {
	deadline := m.journey.CheckInDeadline()
	millis := deadline.Sub(m.clock.Now()).Milliseconds()
	return int64(math.Floor(float64(millis) / 1000))
}

// stateFor 按剩余秒数归类状态
func stateFor(remaining int64) State {
	graceSec := int64(DueGraceWindow / time.Second)
	missedSec := int64(MissedDeadline / time.Second)

	switch {
	case remaining > 0:
		return StateAwaiting
	case remaining > -graceSec:
		return StateDue
	case remaining > -missedSec:
		return StateDue // 宽限已过但未到硬截止，提示保持展示
	default:
		return StateMissed
	}
}
