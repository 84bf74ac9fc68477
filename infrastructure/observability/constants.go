package observability

// Metric name prefixes
const (
	MetricPrefix = "dicehall"
)

// Metric names
const (
	// Session metrics
	SessionsActive      = MetricPrefix + ".sessions.active"
	RoundsResolvedTotal = MetricPrefix + ".rounds.resolved_total"
	BetsCommittedTotal  = MetricPrefix + ".bets.committed_total"
	BetsStakedAmount    = MetricPrefix + ".bets.staked_amount"
	JackpotPaidTotal    = MetricPrefix + ".jackpot.paid_total"

	// Topup metrics
	TopupsPaidTotal = MetricPrefix + ".topups.paid_total"

	// NATS metrics
	NATSMessagesReceivedTotal  = MetricPrefix + ".nats.messages_received_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelGameKind  = "game_kind"
	LabelEventType = "event_type"
	LabelJackpot   = "jackpot"
)
