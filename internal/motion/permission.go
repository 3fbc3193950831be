package motion

import "context"

// PermissionState 传感器权限状态机
// unsupported → prompt → granted | denied
// denied 是终态，除非调用方显式重试
type PermissionState string

const (
	PermissionUnsupported PermissionState = "unsupported"
	PermissionPrompt      PermissionState = "prompt"
	PermissionGranted     PermissionState = "granted"
	PermissionDenied      PermissionState = "denied"
)

// Valid 是否为合法权限状态
func (s PermissionState) Valid() bool {
	switch s {
	case PermissionUnsupported, PermissionPrompt, PermissionGranted, PermissionDenied:
		return true
	}
	return false
}

// PermissionGate 权限询问抽象，平台差异收敛在实现里
// 无显式授权门的平台直接返回 granted，API 不存在返回 unsupported
type PermissionGate interface {
	Request(ctx context.Context) (PermissionState, error)
}

// Permission 当前权限状态
func (d *Detector) Permission() PermissionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

// SetPermission 设备上报权限结果，进入非 granted 状态时清空窗口
func (d *Detector) SetPermission(state PermissionState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.permission = state
	if state != PermissionGranted {
		d.resetLocked()
	}
}

// RequestPermission 通过权限门请求授权
// 请求出错视为 denied，不重试不轮询
func (d *Detector) RequestPermission(ctx context.Context, gate PermissionGate) (PermissionState, error) {
	d.mu.Lock()
	current := d.permission
	d.mu.Unlock()

	if current == PermissionUnsupported {
		return PermissionUnsupported, nil
	}

	state, err := gate.Request(ctx)
	if err != nil {
		d.SetPermission(PermissionDenied)
		return PermissionDenied, err
	}
	if !state.Valid() {
		state = PermissionDenied
	}

	d.SetPermission(state)
	return state, nil
}
