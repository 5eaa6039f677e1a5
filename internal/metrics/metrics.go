// Package metrics содержит счётчики Prometheus для цикла отправки напоминаний.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemindersSent — успешно отправленные напоминания по каналам.
	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reminders_sent_total",
		Help: "Total number of successfully delivered reminders.",
	}, []string{"channel"})

	// RemindersFailed — неудачные попытки отправки по каналам.
	RemindersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reminders_failed_total",
		Help: "Total number of failed reminder delivery attempts.",
	}, []string{"channel"})

	// RemindersSkipped — напоминания, пропущенные из-за ограничений тарифа.
	RemindersSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reminders_skipped_total",
		Help: "Total number of reminders skipped because the channel is not allowed for the user tier.",
	}, []string{"channel"})

	// DispatchCycles — выполненные циклы планировщика.
	DispatchCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_cycles_total",
		Help: "Total number of completed dispatch cycles.",
	})
)
