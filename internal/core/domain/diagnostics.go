package domain

// DriftThreshold is the cache/durable divergence beyond which a balance is
// flagged by the diagnostics query.
const DriftThreshold = 0.01

// DriftEntry compares one currency's cached and durable balance for an
// account.
type DriftEntry struct {
	CurrencyID string  `json:"currencyId"`
	Cached     float64 `json:"cached"`
	Durable    float64 `json:"durable"`
	Drifted    bool    `json:"drifted"`
}
