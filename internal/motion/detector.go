package motion

import (
	"math"
	"sync"
	"time"
)

// 摇一摇识别的默认参数
const (
	DefaultThreshold  = 15.0
	DefaultWindow     = 1000 * time.Millisecond
	DefaultShakeCount = 3
)

// Sample 一次三轴加速度采样（含重力）
type Sample struct {
	X float64
	Y float64
	Z float64
}

// Clock 时钟抽象，测试时注入假时钟
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config 检测器参数，零值字段取默认值
type Config struct {
	Threshold  float64       // 加速度差阈值
	Window     time.Duration // 计数滑动窗口
	ShakeCount int           // 触发所需的冲击次数
	OnShake    func()        // 识别到手势时回调，每个手势至多一次
	Clock      Clock
}

// Detector 将加速度采样流转换为摇一摇手势信号
// 仅在权限为 granted 且已启用时消费采样，窗口状态不持久化
type Detector struct {
	threshold  float64
	window     time.Duration
	shakeCount int
	onShake    func()
	clock      Clock

	mu         sync.Mutex
	enabled    bool
	permission PermissionState
	prev       *Sample
	impulses   []time.Time // 超阈值冲击的时间戳，按序排列
}

func NewDetector(cfg Config) *Detector {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.ShakeCount <= 0 {
		cfg.ShakeCount = DefaultShakeCount
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}

	return &Detector{
		threshold:  cfg.Threshold,
		window:     cfg.Window,
		shakeCount: cfg.ShakeCount,
		onShake:    cfg.OnShake,
		clock:      cfg.Clock,
		enabled:    true,
		permission: PermissionPrompt,
	}
}

// Ingest 以当前时钟消费一个采样
func (d *Detector) Ingest(s Sample) bool {
	return d.IngestAt(s, d.clock.Now())
}

// IngestAt 消费一个带时间戳的采样，返回是否识别到手势
// 上一采样无条件保存，哪怕本次未超阈值或检测未激活
func (d *Detector) IngestAt(s Sample, at time.Time) bool {
	d.mu.Lock()

	if !d.activeLocked() {
		prev := s
		d.prev = &prev
		d.mu.Unlock()
		return false
	}

	var triggered bool
	if d.prev != nil {
		delta := math.Sqrt(
			math.Pow(s.X-d.prev.X, 2) +
				math.Pow(s.Y-d.prev.Y, 2) +
				math.Pow(s.Z-d.prev.Z, 2),
		)

		if delta > d.threshold {
			// 先剪枝再入列，窗口外的冲击不参与计数
			kept := d.impulses[:0]
			for _, ts := range d.impulses {
				if at.Sub(ts) < d.window {
					kept = append(kept, ts)
				}
			}
			d.impulses = append(kept, at)

			if len(d.impulses) >= d.shakeCount {
				// 清空列表，同一批采样不能再次触发
				d.impulses = nil
				triggered = true
			}
		}
	}

	prev := s
	d.prev = &prev
	onShake := d.onShake
	d.mu.Unlock()

	if triggered && onShake != nil {
		onShake()
	}

	return triggered
}

// SetEnabled 启停检测，停用时清空窗口，重新启用从零计数
func (d *Detector) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.enabled = enabled
	if !enabled {
		d.resetLocked()
	}
}

// Enabled 是否已启用
func (d *Detector) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// Active 是否正在消费采样
func (d *Detector) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeLocked()
}

func (d *Detector) activeLocked() bool {
	return d.enabled && d.permission == PermissionGranted
}

func (d *Detector) resetLocked() {
	d.prev = nil
	d.impulses = nil
}
