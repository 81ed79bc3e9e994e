package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuditEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_audit_entries_total",
		Help: "Audit entries written, by action.",
	}, []string{"action"})

	AuditFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helpdesk_audit_failures_total",
		Help: "Audit writes that were rolled back.",
	})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_notifications_created_total",
		Help: "Notifications created by fan-out, by type.",
	}, []string{"type"})

	Emails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_emails_total",
		Help: "Emails attempted, by template and result.",
	}, []string{"template", "result"})

	DBUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "helpdesk_db_up",
		Help: "1 when the last periodic database ping succeeded.",
	})

	RetentionDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_retention_deleted_total",
		Help: "Rows and files removed by retention, by kind.",
	}, []string{"kind"})
)
