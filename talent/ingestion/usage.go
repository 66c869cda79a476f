package ingestion

// Model pricing, per 1K tokens, and the fixed USD→PHP rate used for the
// peso figure shown in diagnostics.
const (
	InputTokenRateUSD  = 0.0025 // per 1K input tokens
	OutputTokenRateUSD = 0.0100 // per 1K output tokens
	USDToPHP           = 58.0
)

// CallUsage is the token usage one model call reports
type CallUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// TokenUsageLedger accumulates usage across the model calls of a single
// pipeline run. One ledger per run: concurrent runs each carry their own,
// so cost attribution stays per-document.
type TokenUsageLedger struct {
	Calls        int   `json:"calls"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Record adds one call's reported usage
func (l *TokenUsageLedger) Record(u CallUsage) {
	l.Calls++
	l.InputTokens += u.InputTokens
	l.OutputTokens += u.OutputTokens
}

// CostUSD derives the dollar cost from accumulated tokens
func (l *TokenUsageLedger) CostUSD() float64 {
	return float64(l.InputTokens)/1000.0*InputTokenRateUSD +
		float64(l.OutputTokens)/1000.0*OutputTokenRateUSD
}

// CostPHP converts the dollar cost at the fixed exchange rate
func (l *TokenUsageLedger) CostPHP() float64 {
	return l.CostUSD() * USDToPHP
}
