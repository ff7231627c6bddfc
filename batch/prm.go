package batch

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Default limits.
const (
	DefaultIDsPerRegisterCall    = 7
	DefaultCallsPerRegisterGroup = 15
	DefaultAddrsPerLookupCall    = 8
	DefaultCallsPerLookupGroup   = 16
	DefaultConcurrency           = 4
	DefaultMaxPasses             = 8
	DefaultConfirmationRounds    = 10
)

var (
	// ErrGroupTooLarge is returned when a group can't fit chain limits.
	ErrGroupTooLarge = errors.New("group too large")
	// ErrPersistentBatchFailure is returned when register pass makes no
	// progress.
	ErrPersistentBatchFailure = errors.New("persistent batch failure")
)

// Prm groups parameters of Orchestrator. Zero values are replaced by
// defaults.
type Prm struct {
	Logger *zap.Logger
	// Optional, metrics are not exported if nil.
	Registerer prometheus.Registerer

	IDsPerRegisterCall    int
	CallsPerRegisterGroup int
	AddrsPerLookupCall    int
	CallsPerLookupGroup   int

	Concurrency        int
	MaxPasses          int
	ConfirmationRounds int
}

// Options are per-request parameters.
type Options struct {
	// Don't look up registered identifiers before registration.
	SkipCheck bool
	// Overrides Prm.Concurrency if positive.
	Concurrency int
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func (p *Prm) setDefaults() {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}

	setDefault(&p.IDsPerRegisterCall, DefaultIDsPerRegisterCall)
	setDefault(&p.CallsPerRegisterGroup, DefaultCallsPerRegisterGroup)
	setDefault(&p.AddrsPerLookupCall, DefaultAddrsPerLookupCall)
	setDefault(&p.CallsPerLookupGroup, DefaultCallsPerLookupGroup)
	setDefault(&p.Concurrency, DefaultConcurrency)
	setDefault(&p.MaxPasses, DefaultMaxPasses)
	setDefault(&p.ConfirmationRounds, DefaultConfirmationRounds)
}
