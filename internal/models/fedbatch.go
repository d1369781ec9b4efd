package models

import (
	"fmt"
	"math"

	"github.com/san-kum/fedbatch/internal/dynamo"
	"github.com/san-kum/fedbatch/internal/integrators"
)

// Indices into the state vector produced by State.Vector.
const (
	IdxBiomass = iota
	IdxSubstrate
	IdxProduct
	IdxVolume
)

// State is the culture state: concentrations in g/L and volume in L.
type State struct {
	Biomass   float64 `json:"biomass"`
	Substrate float64 `json:"substrate"`
	Product   float64 `json:"product"`
	Volume    float64 `json:"volume"`
}

// InitialState is the state a run starts from.
func InitialState(x0, s0 float64) State {
	return State{Biomass: x0, Substrate: s0, Product: 0, Volume: InitialVolume}
}

func (s State) Vector() dynamo.State {
	return dynamo.State{s.Biomass, s.Substrate, s.Product, s.Volume}
}

func StateFromVector(x dynamo.State) State {
	return State{
		Biomass:   x[IdxBiomass],
		Substrate: x[IdxSubstrate],
		Product:   x[IdxProduct],
		Volume:    x[IdxVolume],
	}
}

// GrowthRate is the Monod specific growth rate μmax·S/(Ks+S).
func GrowthRate(p Params, substrate float64) float64 {
	return p.MaxGrowthRate * substrate / (p.HalfSaturation + substrate)
}

// Kinetics is the fed-batch mass balance. The control input u[0] is the
// volumetric feed rate; without it Params.FeedRate is used.
type Kinetics struct {
	Params Params
}

func NewKinetics(p Params) *Kinetics {
	return &Kinetics{Params: p}
}

func (k *Kinetics) StateDim() int   { return 4 }
func (k *Kinetics) ControlDim() int { return 1 }

func (k *Kinetics) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	p := k.Params
	biomass, substrate, volume := x[IdxBiomass], x[IdxSubstrate], x[IdxVolume]

	feed := p.FeedRate
	if len(u) > 0 {
		feed = u[0]
	}

	mu := GrowthRate(p, substrate)
	growth := mu * biomass

	dv := 0.0
	if p.VolumePolicy == Growing {
		dv = feed
	}

	return dynamo.State{
		growth,
		-growth/p.BiomassYield + feed/volume*(p.FeedSubstrate-substrate),
		p.ProductYield * growth,
		dv,
	}
}

var euler dynamo.Integrator = integrators.NewEuler()

// Advance integrates one time step of p.TimeStep from s. Parameters are
// expected to have passed Validate. Substrate is clamped at zero; any other
// non-finite or out-of-domain result is reported as ErrNumericAnomaly and s
// should be kept by the caller.
func Advance(s State, p Params) (State, error) {
	next := euler.Step(NewKinetics(p), s.Vector(), dynamo.Control{p.FeedRate}, 0, p.TimeStep)

	if sub := next[IdxSubstrate]; math.IsNaN(sub) || math.IsInf(sub, 0) || sub < 0 {
		next[IdxSubstrate] = 0
	}
	if !next.IsValid() {
		return s, fmt.Errorf("%w: %v", dynamo.ErrNumericAnomaly, next)
	}
	if next[IdxVolume] <= 0 {
		return s, fmt.Errorf("%w: volume %g", dynamo.ErrNumericAnomaly, next[IdxVolume])
	}

	return StateFromVector(next), nil
}
