package motion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

// granted 返回一个已授权的检测器
func granted(cfg Config) *Detector {
	d := NewDetector(cfg)
	d.SetPermission(PermissionGranted)
	return d
}

// impulser 产生单向递增的采样序列，每次调用恰好构成一次超阈值冲击
type impulser struct {
	d *Detector
	x float64
}

// newImpulser 先送入一个基准采样占住 prev
func newImpulser(d *Detector, seedAt time.Time) *impulser {
	d.IngestAt(Sample{}, seedAt)
	return &impulser{d: d}
}

func (im *impulser) impulse(at time.Time) bool {
	im.x += 20
	return im.d.IngestAt(Sample{X: im.x}, at)
}

func TestShakeCountThreshold(t *testing.T) {
	count := 0
	d := granted(Config{OnShake: func() { count++ }})
	im := newImpulser(d, base.Add(-10*time.Millisecond))

	// shakeCount-1 次冲击不触发
	at := base
	for i := 0; i < DefaultShakeCount-1; i++ {
		assert.False(t, im.impulse(at))
		at = at.Add(100 * time.Millisecond)
	}
	assert.Equal(t, 0, count)

	// 第 shakeCount 次冲击触发且只触发一次
	assert.True(t, im.impulse(at))
	assert.Equal(t, 1, count)

	// 列表已清空，紧随其后的冲击不再触发
	assert.False(t, im.impulse(at.Add(50*time.Millisecond)))
	assert.Equal(t, 1, count)
}

func TestWindowPruning(t *testing.T) {
	count := 0
	d := granted(Config{OnShake: func() { count++ }})
	im := newImpulser(d, base.Add(-10*time.Millisecond))

	// 两次冲击在 t=0 和 t=0.1s，第三次在 t=2s，窗口 1s 不触发
	im.impulse(base)
	im.impulse(base.Add(100 * time.Millisecond))
	triggered := im.impulse(base.Add(2 * time.Second))

	assert.False(t, triggered)
	assert.Equal(t, 0, count)
}

func TestBelowThresholdIgnored(t *testing.T) {
	count := 0
	d := granted(Config{OnShake: func() { count++ }})

	at := base
	for i := 0; i < 10; i++ {
		d.IngestAt(Sample{X: float64(i % 2), Y: 0, Z: 0}, at)
		at = at.Add(50 * time.Millisecond)
	}

	assert.Equal(t, 0, count)
}

func TestPreviousSampleStoredUnconditionally(t *testing.T) {
	d := granted(Config{})

	// 未超阈值的采样同样更新 prev
	d.IngestAt(Sample{X: 1, Y: 1, Z: 1}, base)
	d.IngestAt(Sample{X: 1.5, Y: 1, Z: 1}, base.Add(50*time.Millisecond))

	d.mu.Lock()
	require.NotNil(t, d.prev)
	assert.Equal(t, 1.5, d.prev.X)
	d.mu.Unlock()
}

func TestInactiveWhenNotGranted(t *testing.T) {
	count := 0
	d := NewDetector(Config{OnShake: func() { count++ }})
	im := newImpulser(d, base.Add(-10*time.Millisecond))

	// prompt 状态不消费采样
	at := base
	for i := 0; i < 5; i++ {
		assert.False(t, im.impulse(at))
		at = at.Add(100 * time.Millisecond)
	}
	assert.Equal(t, 0, count)
	assert.False(t, d.Active())
}

func TestDisableClearsWindow(t *testing.T) {
	count := 0
	d := granted(Config{OnShake: func() { count++ }})
	im := newImpulser(d, base.Add(-10*time.Millisecond))

	im.impulse(base)
	im.impulse(base.Add(100 * time.Millisecond))

	// 停用再启用，prev 与窗口都从零重建
	d.SetEnabled(false)
	d.SetEnabled(true)

	triggered := im.impulse(base.Add(200 * time.Millisecond))
	assert.False(t, triggered)
	assert.Equal(t, 0, count)

	d.mu.Lock()
	assert.Empty(t, d.impulses)
	d.mu.Unlock()
}

type fakeGate struct {
	state PermissionState
	err   error
}

func (g fakeGate) Request(ctx context.Context) (PermissionState, error) {
	return g.state, g.err
}

func TestPermissionTransitions(t *testing.T) {
	d := NewDetector(Config{})
	assert.Equal(t, PermissionPrompt, d.Permission())

	state, err := d.RequestPermission(context.Background(), fakeGate{state: PermissionGranted})
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, state)
	assert.True(t, d.Active())

	// 拒绝后检测不再激活
	state, err = d.RequestPermission(context.Background(), fakeGate{state: PermissionDenied})
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, state)
	assert.False(t, d.Active())
}

func TestPermissionRequestError(t *testing.T) {
	d := NewDetector(Config{})

	state, err := d.RequestPermission(context.Background(), fakeGate{err: errors.New("gate failure")})
	require.Error(t, err)
	assert.Equal(t, PermissionDenied, state)
	assert.Equal(t, PermissionDenied, d.Permission())
}

func TestUnsupportedIsTerminal(t *testing.T) {
	d := NewDetector(Config{})
	d.SetPermission(PermissionUnsupported)

	state, err := d.RequestPermission(context.Background(), fakeGate{state: PermissionGranted})
	require.NoError(t, err)
	assert.Equal(t, PermissionUnsupported, state)
	assert.False(t, d.Active())
}

func TestRegistryRoutesTrigger(t *testing.T) {
	var triggeredUser int64
	r := NewRegistry(func(userID int64) { triggeredUser = userID })

	d := r.Ensure(7, Settings{Enabled: true, Threshold: 15, WindowMs: 1000, ShakeCount: 3})
	assert.Same(t, d, r.Ensure(7, Settings{}))

	d.SetPermission(PermissionGranted)
	im := newImpulser(d, base.Add(-10*time.Millisecond))
	at := base
	for i := 0; i < 3; i++ {
		im.impulse(at)
		at = at.Add(100 * time.Millisecond)
	}

	assert.Equal(t, int64(7), triggeredUser)

	r.Remove(7)
	assert.Nil(t, r.Get(7))
}
