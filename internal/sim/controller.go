// Package sim drives a fed-batch run: it owns the process state, the run
// state machine and the sample history read by the frontend.
//
// A Controller is single-threaded. The frontend calls Tick once per frame
// from its render loop and reads snapshots between ticks; no method blocks
// and none may be called concurrently.
package sim

import (
	"errors"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/san-kum/fedbatch/internal/dynamo"
	"github.com/san-kum/fedbatch/internal/history"
	"github.com/san-kum/fedbatch/internal/models"
)

type RunState int

const (
	Idle RunState = iota
	Running
)

func (r RunState) String() string {
	if r == Running {
		return "RUNNING"
	}
	return "IDLE"
}

// PhaseStep is the impeller rotation per tick, in radians.
const PhaseStep = 0.1

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithHistory(opts history.Options) Option {
	return func(c *Controller) { c.history = history.New(opts) }
}

func WithMetrics(ms ...dynamo.Metric) Option {
	return func(c *Controller) { c.metrics = append(c.metrics, ms...) }
}

func WithObserver(o dynamo.Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

type Controller struct {
	params   models.Params
	x0, s0   float64
	state    models.State
	runState RunState
	history  *history.History

	t     float64
	steps int
	phase float64
	runID string

	metrics   []dynamo.Metric
	observers []dynamo.Observer
	log       *zap.Logger
}

// New returns an idle controller holding the default parameters and
// initial conditions.
func New(opts ...Option) *Controller {
	c := &Controller{
		params:  models.DefaultParams(),
		x0:      models.DefaultInitialBiomass,
		s0:      models.DefaultInitialSubstrate,
		history: history.New(history.Options{}),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = models.InitialState(c.x0, c.s0)
	return c
}

// Configure stores new parameters and initial conditions and rebuilds the
// process state from them. It leaves the run state and history alone. On a
// validation error nothing changes.
func (c *Controller) Configure(p models.Params, x0, s0 float64) error {
	if err := p.Validate(); err != nil {
		c.log.Debug("configuration rejected", zap.Error(err))
		return err
	}
	if err := models.ValidateInitial(x0, s0); err != nil {
		c.log.Debug("configuration rejected", zap.Error(err))
		return err
	}

	c.params = p
	c.x0, c.s0 = x0, s0
	c.state = models.InitialState(x0, s0)

	c.log.Debug("configured",
		zap.Float64("x0", x0),
		zap.Float64("s0", s0),
		zap.Float64("mu_max", p.MaxGrowthRate),
		zap.Float64("feed", p.FeedRate),
		zap.Float64("sf", p.FeedSubstrate),
		zap.Float64("dt", p.TimeStep),
		zap.Stringer("volume", p.VolumePolicy),
		zap.Stringer("run_state", c.runState),
	)
	return nil
}

// Reset returns to the configured initial condition with an empty history
// and leaves the controller idle.
func (c *Controller) Reset() {
	c.reset()
	c.runState = Idle
	c.log.Debug("reset", zap.Float64("x0", c.x0), zap.Float64("s0", c.s0))
}

// Start resets and then begins a run.
func (c *Controller) Start() {
	c.reset()
	c.runID = xid.New().String()
	c.runState = Running
	c.log.Debug("started", zap.String("run_id", c.runID))
}

func (c *Controller) reset() {
	c.state = models.InitialState(c.x0, c.s0)
	c.history.Reset()
	c.t = 0
	c.steps = 0
	c.phase = 0
	for _, m := range c.metrics {
		m.Reset()
	}
}

// Tick advances one time step when running and is a no-op when idle. A step
// that produces a non-finite value is not applied: the controller stops and
// returns a *dynamo.StepError wrapping dynamo.ErrNumericAnomaly.
func (c *Controller) Tick() error {
	if c.runState != Running {
		return nil
	}

	next, err := models.Advance(c.state, c.params)
	if err != nil {
		stepErr := &dynamo.StepError{Step: c.steps, Time: c.t, State: c.state.Vector(), Wrapped: err}
		c.runState = Idle
		c.log.Error("integration step failed",
			zap.String("run_id", c.runID),
			zap.Int("step", c.steps),
			zap.Float64("t", c.t),
			zap.Error(err),
		)
		return stepErr
	}

	c.state = next
	c.steps++
	c.t += c.params.TimeStep
	c.phase += PhaseStep
	c.history.Record(c.t, next.Biomass, next.Substrate, next.Product)

	x := next.Vector()
	u := dynamo.Control{c.params.FeedRate}
	for _, m := range c.metrics {
		m.Observe(x, u, c.t)
	}
	for _, o := range c.observers {
		o.OnStep(x, u, c.t)
	}
	return nil
}

// RunFor ticks until the elapsed time reaches hours or a step fails. It
// starts a fresh run first.
func (c *Controller) RunFor(hours float64) error {
	c.Start()
	steps := int(hours/c.params.TimeStep + 0.5)
	for i := 0; i < steps; i++ {
		if err := c.Tick(); err != nil {
			return err
		}
	}
	c.runState = Idle
	c.log.Debug("run finished",
		zap.String("run_id", c.runID),
		zap.Int("steps", c.steps),
		zap.Float64("t", c.t),
	)
	return nil
}

func (c *Controller) State() models.State     { return c.state }
func (c *Controller) RunState() RunState      { return c.runState }
func (c *Controller) Params() models.Params   { return c.params }
func (c *Controller) History() history.Series { return c.history.Series() }
func (c *Controller) Elapsed() float64        { return c.t }
func (c *Controller) Steps() int              { return c.steps }
func (c *Controller) Phase() float64          { return c.phase }

// RunID identifies the current or most recent run; empty before the first Start.
func (c *Controller) RunID() string { return c.runID }

// Initial returns the configured initial biomass and substrate.
func (c *Controller) Initial() (x0, s0 float64) { return c.x0, c.s0 }

func (c *Controller) HistoryOptions() history.Options { return c.history.Options() }

func (c *Controller) Metrics() map[string]float64 {
	out := make(map[string]float64, len(c.metrics))
	for _, m := range c.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// MetricNames lists registered metrics in registration order.
func (c *Controller) MetricNames() []string {
	names := make([]string, len(c.metrics))
	for i, m := range c.metrics {
		names[i] = m.Name()
	}
	return names
}

// IsAnomaly reports whether err came from a failed integration step.
func IsAnomaly(err error) bool {
	return errors.Is(err, dynamo.ErrNumericAnomaly)
}
