// Package metrics defines and registers the custom Prometheus metrics of the
// phonebook API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Collectors are registered with the default registry through promauto when
// the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "phonebook"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts auth use-case outcomes.
// Labels:
//   - event: "register", "verify", "resend", "login", "logout", "subscription"
//   - result: "ok" or a short failure reason (e.g. "conflict", "unverified")
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of auth operations, by event and result.",
	},
	[]string{"event", "result"},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailDeliveriesTotal counts verification mails handed to the SMTP relay.
// Label:
//   - result: "sent" or "failed"
var MailDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_deliveries_total",
		Help:      "Total number of verification mails handed to SMTP, by result.",
	},
	[]string{"result"},
)

// MailRejectedTotal counts mails the dispatcher refused to queue.
// Label:
//   - reason: "stopped" or "canceled"
var MailRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_rejected_total",
		Help:      "Total number of verification mails not accepted by the dispatcher.",
	},
	[]string{"reason"},
)

// MailQueueDepth tracks the number of mails waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of mails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// MailDeliveryDuration measures one SMTP send.
// Label:
//   - result: "sent" or "failed"
var MailDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_delivery_duration_seconds",
		Help:      "Duration of a single SMTP delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Avatar metrics ────────────────────────────────────────────────────────────

// AvatarUploadsTotal counts avatar uploads.
// Label:
//   - result: "ok", "invalid_image", "missing_file" or "error"
var AvatarUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "avatar_uploads_total",
		Help:      "Total number of avatar uploads, by result.",
	},
	[]string{"result"},
)

// AvatarProcessingDuration measures the pipeline from staged file to updated record.
var AvatarProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "avatar_processing_duration_seconds",
		Help:      "Duration of the avatar pipeline, resize included.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// ── Contact metrics ───────────────────────────────────────────────────────────

// ContactOperationsTotal counts successful contact writes.
// Label:
//   - operation: "create", "update", "favorite" or "delete"
var ContactOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_operations_total",
		Help:      "Total number of contact writes, by operation.",
	},
	[]string{"operation"},
)
