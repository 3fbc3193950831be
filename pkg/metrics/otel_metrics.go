package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 行程与告警指标
	JourneysStartedTotal  metric.Int64Counter
	CheckInsTotal         metric.Int64Counter
	MissedCheckInsTotal   metric.Int64Counter
	AlertsEmittedTotal    metric.Int64Counter
	ShakeTriggersTotal    metric.Int64Counter
	ActiveMonitors        metric.Int64UpDownCounter

	// 短信指标
	SMSSentTotal    metric.Int64Counter
	SMSSendDuration metric.Float64Histogram
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("safeher")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.JourneysStartedTotal, err = meter.Int64Counter(
		"journeys_started_total",
		metric.WithDescription("Total number of journeys started"),
		metric.WithUnit("{journey}"),
	)
	if err != nil {
		return err
	}

	metrics.CheckInsTotal, err = meter.Int64Counter(
		"check_ins_total",
		metric.WithDescription("Total number of journey check-ins"),
		metric.WithUnit("{checkin}"),
	)
	if err != nil {
		return err
	}

	metrics.MissedCheckInsTotal, err = meter.Int64Counter(
		"missed_check_ins_total",
		metric.WithDescription("Total number of missed check-in escalations"),
		metric.WithUnit("{escalation}"),
	)
	if err != nil {
		return err
	}

	metrics.AlertsEmittedTotal, err = meter.Int64Counter(
		"alerts_emitted_total",
		metric.WithDescription("Total number of emergency alerts emitted"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return err
	}

	metrics.ShakeTriggersTotal, err = meter.Int64Counter(
		"shake_triggers_total",
		metric.WithDescription("Total number of shake-to-SOS triggers"),
		metric.WithUnit("{trigger}"),
	)
	if err != nil {
		return err
	}

	metrics.ActiveMonitors, err = meter.Int64UpDownCounter(
		"active_journey_monitors",
		metric.WithDescription("Number of journey monitors currently ticking"),
		metric.WithUnit("{monitor}"),
	)
	if err != nil {
		return err
	}

	metrics.SMSSentTotal, err = meter.Int64Counter(
		"sms_sent_total",
		metric.WithDescription("Total number of SMS sent"),
		metric.WithUnit("{sms}"),
	)
	if err != nil {
		return err
	}

	metrics.SMSSendDuration, err = meter.Float64Histogram(
		"sms_send_duration_seconds",
		metric.WithDescription("Time spent sending SMS in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例，未初始化时返回 nil
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordJourneyStarted 记录行程开始
func (m *OTelMetrics) RecordJourneyStarted(ctx context.Context) {
	m.JourneysStartedTotal.Add(ctx, 1)
}

// RecordCheckIn 记录打卡
func (m *OTelMetrics) RecordCheckIn(ctx context.Context, source string) {
	m.CheckInsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
	))
}

// RecordMissedCheckIn 记录错过打卡升级
func (m *OTelMetrics) RecordMissedCheckIn(ctx context.Context, source string) {
	m.MissedCheckInsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
	))
}

// RecordAlertEmitted 记录告警产生
func (m *OTelMetrics) RecordAlertEmitted(ctx context.Context, alertType string) {
	m.AlertsEmittedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("alert_type", alertType),
	))
}

// RecordShakeTrigger 记录摇一摇触发
func (m *OTelMetrics) RecordShakeTrigger(ctx context.Context) {
	m.ShakeTriggersTotal.Add(ctx, 1)
}

// AddActiveMonitor 活跃监控器 +1
func (m *OTelMetrics) AddActiveMonitor(ctx context.Context) {
	m.ActiveMonitors.Add(ctx, 1)
}

// RemoveActiveMonitor 活跃监控器 -1
func (m *OTelMetrics) RemoveActiveMonitor(ctx context.Context) {
	m.ActiveMonitors.Add(ctx, -1)
}

// RecordSMSSent 记录短信发送结果
func (m *OTelMetrics) RecordSMSSent(ctx context.Context, template, provider, status string, duration float64) {
	m.SMSSentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("template", template),
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
	m.SMSSendDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("template", template),
		attribute.String("provider", provider),
	))
}
