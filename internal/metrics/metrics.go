// Package metrics holds run summaries observed once per tick.
//
// Every metric reads the [models] state vector layout [X, S, P, V] and the
// feed-rate control vector the controller applies.
package metrics

import (
	"math"

	"github.com/san-kum/fedbatch/internal/dynamo"
	"github.com/san-kum/fedbatch/internal/models"
)

// Default returns one of each metric, in display order.
func Default() []dynamo.Metric {
	return []dynamo.Metric{
		NewPeakBiomass(),
		NewProductivity(),
		NewSubstrateDepletion(DepletionThreshold),
		NewFeedVolume(),
	}
}

type PeakBiomass struct {
	name string
	peak float64
	seen bool
}

func NewPeakBiomass() *PeakBiomass {
	return &PeakBiomass{name: "peak_biomass"}
}

func (m *PeakBiomass) Name() string { return m.name }

func (m *PeakBiomass) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) <= models.IdxBiomass {
		return
	}
	if !m.seen || x[models.IdxBiomass] > m.peak {
		m.peak = x[models.IdxBiomass]
		m.seen = true
	}
}

func (m *PeakBiomass) Value() float64 { return m.peak }

func (m *PeakBiomass) Reset() {
	m.peak = 0
	m.seen = false
}

// Productivity is the volumetric product productivity P/t in g/L/h.
type Productivity struct {
	name    string
	product float64
	t       float64
}

func NewProductivity() *Productivity {
	return &Productivity{name: "productivity"}
}

func (m *Productivity) Name() string { return m.name }

func (m *Productivity) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) <= models.IdxProduct {
		return
	}
	m.product = x[models.IdxProduct]
	m.t = t
}

func (m *Productivity) Value() float64 {
	if m.t <= 0 {
		return 0
	}
	return m.product / m.t
}

func (m *Productivity) Reset() {
	m.product = 0
	m.t = 0
}

// DepletionThreshold is the substrate level treated as exhausted, in g/L.
const DepletionThreshold = 1e-9

// SubstrateDepletion records the first time substrate fell to the threshold,
// or -1 if it never did.
type SubstrateDepletion struct {
	name      string
	threshold float64
	at        float64
}

func NewSubstrateDepletion(threshold float64) *SubstrateDepletion {
	return &SubstrateDepletion{
		name:      "substrate_depletion_time",
		threshold: threshold,
		at:        -1,
	}
}

func (m *SubstrateDepletion) Name() string { return m.name }

func (m *SubstrateDepletion) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if m.at >= 0 || len(x) <= models.IdxSubstrate {
		return
	}
	if x[models.IdxSubstrate] <= m.threshold {
		m.at = t
	}
}

func (m *SubstrateDepletion) Value() float64 { return m.at }

func (m *SubstrateDepletion) Reset() { m.at = -1 }

// FeedVolume integrates the applied feed rate over time, in litres.
type FeedVolume struct {
	name  string
	sum   float64
	prevT float64
}

func NewFeedVolume() *FeedVolume {
	return &FeedVolume{name: "feed_volume"}
}

func (m *FeedVolume) Name() string { return m.name }

func (m *FeedVolume) Observe(x dynamo.State, u dynamo.Control, t float64) {
	dt := t - m.prevT
	m.prevT = t
	if len(u) == 0 || dt <= 0 {
		return
	}
	m.sum += math.Abs(u[0]) * dt
}

func (m *FeedVolume) Value() float64 { return m.sum }

func (m *FeedVolume) Reset() {
	m.sum = 0
	m.prevT = 0
}
