package motion

import (
	"sync"
	"time"
)

// Settings 单个用户的摇一摇配置
type Settings struct {
	Enabled    bool
	Threshold  float64
	WindowMs   int
	ShakeCount int
}

// TriggerFunc 手势识别回调，由上层接 SOS 告警
type TriggerFunc func(userID int64)

// Registry 按用户维护检测器，采样通过 API 上报后路由到对应实例
type Registry struct {
	trigger TriggerFunc

	mu        sync.Mutex
	detectors map[int64]*Detector
}

func NewRegistry(trigger TriggerFunc) *Registry {
	return &Registry{
		trigger:   trigger,
		detectors: make(map[int64]*Detector),
	}
}

// Ensure 返回用户的检测器，不存在时按配置创建
func (r *Registry) Ensure(userID int64, settings Settings) *Detector {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.detectors[userID]; ok {
		return d
	}

	d := NewDetector(Config{
		Threshold:  settings.Threshold,
		Window:     time.Duration(settings.WindowMs) * time.Millisecond,
		ShakeCount: settings.ShakeCount,
		OnShake: func() {
			if r.trigger != nil {
				r.trigger(userID)
			}
		},
	})
	d.SetEnabled(settings.Enabled)
	r.detectors[userID] = d

	return d
}

// Get 返回用户的检测器，不存在时返回 nil
func (r *Registry) Get(userID int64) *Detector {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detectors[userID]
}

// Remove 移除用户的检测器
func (r *Registry) Remove(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.detectors, userID)
}
