package observability

// Metric name prefixes
const (
	MetricPrefix = "dailybet"
)

// Metric names
const (
	// Ledger metrics
	LedgerOperationsTotal = MetricPrefix + ".ledger.operations_total"

	// Betting metrics
	BetsPlacedTotal   = MetricPrefix + ".bets.placed_total"
	BetsStakedAmount  = MetricPrefix + ".bets.staked_amount"
	LineUpdatesTotal  = MetricPrefix + ".lines.updates_total"
	SettlementsTotal  = MetricPrefix + ".settlements.total"
	SettlementCredits = MetricPrefix + ".settlements.credits_total"
	SettlementPaid    = MetricPrefix + ".settlements.paid_amount"

	// Wallet metrics
	WithdrawalUpdatesTotal = MetricPrefix + ".withdrawals.updates_total"
	DepositsVerifiedTotal  = MetricPrefix + ".deposits.verified_total"

	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelChoice    = "choice"
	LabelStatus    = "status"
	LabelOutcome   = "outcome"

	// HTTP labels
	LabelRoute  = "route"
	LabelMethod = "method"
	LabelCode   = "code"
)

// Settlement credit outcomes
const (
	OutcomeCredited = "credited"
	OutcomeFailed   = "failed"
)
