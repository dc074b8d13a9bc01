package domain

const (
	// DefaultExpirationWindow is roughly 14 days worth of 14 seconds intervals.
	DefaultExpirationWindow = 86400
	// DefaultFee is the default protocol fee, expressed in the settlement
	// currency unit.
	DefaultFee = "0.005"
	// DefaultMaxReclaimBatchSize caps the number of trades processed by a
	// single fee reclaim.
	DefaultMaxReclaimBatchSize = 100
)
