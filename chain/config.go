package chain

// Config groups fee, compute and storage cost parameters of the chain.
type Config struct {
	// Fee floor of a single call, inner calls included.
	MinFee int64
	// Compute units every call adds to the group pool.
	CallBudget int64
	// Compute units an inner call costs to its issuer.
	InnerCallOverhead int64
	// Max number of top-level calls in a group.
	MaxGroupSize int
	// Max number of inner calls in a group.
	MaxInnerCalls int

	// Base minimum balance of a non-empty account.
	MinBalance int64
	// Minimum balance increment per storage item owned.
	BoxFlatCost int64
	// Minimum balance increment per byte of storage item key and value.
	BoxByteCost int64

	// Max number of groups applied per round, 0 means no limit.
	MaxGroupsPerRound int
}

// DefaultConfig returns default chain parameters.
func DefaultConfig() Config {
	return Config{
		MinFee:            1000,
		CallBudget:        700,
		InnerCallOverhead: 30,
		MaxGroupSize:      16,
		MaxInnerCalls:     256,
		MinBalance:        100_000,
		BoxFlatCost:       2_500,
		BoxByteCost:       400,
	}
}
