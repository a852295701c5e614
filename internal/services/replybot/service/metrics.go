package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"shamewizard/internal/platform/metrics"
)

// instruments are the bot's prometheus series
type instruments struct {
	received     prometheus.Counter
	matched      prometheus.Counter
	skipped      *prometheus.CounterVec
	replies      *prometheus.CounterVec
	replyLatency *prometheus.HistogramVec
	queueDepth   prometheus.Gauge
	ledgerSize   prometheus.Gauge
	rulesLoaded  prometheus.Gauge
	ruleErrors   prometheus.Counter
	flushes      *prometheus.CounterVec
}

func newInstruments(reg *metrics.Registry) *instruments {
	return &instruments{
		received:     reg.Counter("comments_received_total", "Comments delivered by the stream").WithLabelValues(),
		matched:      reg.Counter("comments_matched_total", "Comments that matched a tracked rule and were queued").WithLabelValues(),
		skipped:      reg.Counter("comments_skipped_total", "Comments dropped before queueing", "reason"),
		replies:      reg.Counter("replies_total", "Reply attempts by outcome", "outcome"),
		replyLatency: reg.Histogram("reply_duration_seconds", "Latency of live reply calls", "outcome"),
		queueDepth:   reg.Gauge("reply_queue_depth", "Jobs waiting in the reply queue"),
		ledgerSize:   reg.Gauge("ledger_comments", "Comment ids held in the dedup ledger"),
		rulesLoaded:  reg.Gauge("rules_loaded", "Tracked rules in the active set"),
		ruleErrors:   reg.Counter("rule_refresh_errors_total", "Failed rule reloads").WithLabelValues(),
		flushes:      reg.Counter("state_flush_total", "State flushes by result", "result"),
	}
}

const (
	skipSelf      = "self"
	skipSeen      = "seen"
	skipUnmatched = "unmatched"

	outcomeSent   = "sent"
	outcomeFailed = "failed"
	outcomeDryRun = "dry_run"
)
