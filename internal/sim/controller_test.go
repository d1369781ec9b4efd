package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/fedbatch/internal/dynamo"
	"github.com/san-kum/fedbatch/internal/history"
	"github.com/san-kum/fedbatch/internal/metrics"
	"github.com/san-kum/fedbatch/internal/models"
	"github.com/san-kum/fedbatch/internal/sim"
)

type countingObserver struct {
	steps int
	lastT float64
}

func (o *countingObserver) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	o.steps++
	o.lastT = t
}

func referenceParams() models.Params {
	p := models.DefaultParams()
	p.VolumePolicy = models.Constant
	return p
}

var _ = Describe("Controller", func() {
	var c *sim.Controller

	BeforeEach(func() {
		c = sim.New()
	})

	Context("when created", func() {
		It("should be idle with the default initial state", func() {
			Expect(c.RunState()).To(Equal(sim.Idle))
			Expect(c.State()).To(Equal(models.State{Biomass: 0.1, Substrate: 20, Product: 0, Volume: 1.0}))
			Expect(c.History().Len()).To(BeZero())
			Expect(c.RunID()).To(BeEmpty())
		})

		It("should default to the growing volume policy", func() {
			Expect(c.Params().VolumePolicy).To(Equal(models.Growing))
		})
	})

	Context("when idle", func() {
		It("should not change anything on tick", func() {
			before := c.State()

			for i := 0; i < 10; i++ {
				Expect(c.Tick()).To(Succeed())
			}

			Expect(c.State()).To(Equal(before))
			Expect(c.History().Len()).To(BeZero())
			Expect(c.Steps()).To(BeZero())
			Expect(c.Phase()).To(BeZero())
		})
	})

	Context("configure", func() {
		It("should rebuild the state without touching run state or history", func() {
			c.Start()
			for i := 0; i < 5; i++ {
				Expect(c.Tick()).To(Succeed())
			}

			Expect(c.Configure(referenceParams(), 0.5, 30)).To(Succeed())

			Expect(c.RunState()).To(Equal(sim.Running))
			Expect(c.History().Len()).To(Equal(5))
			Expect(c.State()).To(Equal(models.State{Biomass: 0.5, Substrate: 30, Volume: 1.0}))
			x0, s0 := c.Initial()
			Expect(x0).To(Equal(0.5))
			Expect(s0).To(Equal(30.0))
		})

		It("should reject invalid parameters and keep the previous configuration", func() {
			Expect(c.Configure(referenceParams(), 0.2, 10)).To(Succeed())

			bad := referenceParams()
			bad.HalfSaturation = 0
			err := c.Configure(bad, 0.9, 35)

			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(c.Params()).To(Equal(referenceParams()))
			Expect(c.State()).To(Equal(models.InitialState(0.2, 10)))
		})

		It("should reject negative initial concentrations", func() {
			err := c.Configure(referenceParams(), -1, 10)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(c.State()).To(Equal(models.InitialState(0.1, 20)))
		})
	})

	Context("start", func() {
		It("should begin a clean run", func() {
			c.Start()

			Expect(c.RunState()).To(Equal(sim.Running))
			Expect(c.History().Len()).To(BeZero())
			Expect(c.RunID()).NotTo(BeEmpty())
		})

		It("should restart from the initial condition when already running", func() {
			c.Start()
			first := c.RunID()
			for i := 0; i < 20; i++ {
				Expect(c.Tick()).To(Succeed())
			}

			c.Start()

			Expect(c.RunState()).To(Equal(sim.Running))
			Expect(c.State()).To(Equal(models.InitialState(0.1, 20)))
			Expect(c.History().Len()).To(BeZero())
			Expect(c.Elapsed()).To(BeZero())
			Expect(c.RunID()).NotTo(Equal(first))
		})
	})

	Context("reset", func() {
		It("should be idempotent from any run state", func() {
			c.Start()
			for i := 0; i < 30; i++ {
				Expect(c.Tick()).To(Succeed())
			}

			c.Reset()
			firstState, firstHistory := c.State(), c.History()
			c.Reset()

			Expect(c.RunState()).To(Equal(sim.Idle))
			Expect(c.State()).To(Equal(firstState))
			Expect(firstHistory.Len()).To(BeZero())
			Expect(c.History().Len()).To(BeZero())
			Expect(c.Phase()).To(BeZero())
		})

		It("should use the last configured initial condition", func() {
			Expect(c.Configure(referenceParams(), 0.3, 15)).To(Succeed())
			c.Start()
			Expect(c.Tick()).To(Succeed())

			c.Reset()

			Expect(c.State()).To(Equal(models.InitialState(0.3, 15)))
		})
	})

	Context("tick while running", func() {
		It("should match the reference step", func() {
			Expect(c.Configure(referenceParams(), 0.1, 20)).To(Succeed())
			c.Start()
			Expect(c.Tick()).To(Succeed())

			s := c.State()
			Expect(s.Biomass).To(BeNumerically("~", 0.10117, 1e-4))
			Expect(s.Substrate).To(BeNumerically("~", 20.0427, 1e-4))
			Expect(s.Product).To(BeNumerically("~", 0.000234, 1e-4))
			Expect(s.Volume).To(Equal(1.0))
		})

		It("should keep history consistent with the state", func() {
			c.Start()
			const n = 250
			for i := 0; i < n; i++ {
				Expect(c.Tick()).To(Succeed())
			}

			h := c.History()
			Expect(h.Biomass).To(HaveLen(n))
			Expect(h.Substrate).To(HaveLen(n))
			Expect(h.Product).To(HaveLen(n))
			Expect(h.Biomass[n-1]).To(Equal(c.State().Biomass))
			Expect(h.Substrate[n-1]).To(Equal(c.State().Substrate))
			Expect(h.Product[n-1]).To(Equal(c.State().Product))
			Expect(c.Steps()).To(Equal(n))
			Expect(c.Elapsed()).To(BeNumerically("~", n*c.Params().TimeStep, 1e-9))
			Expect(c.Phase()).To(BeNumerically("~", n*sim.PhaseStep, 1e-9))
		})

		It("should never record negative substrate", func() {
			p := models.DefaultParams()
			p.MaxGrowthRate = 0.8
			p.FeedRate = 0
			p.TimeStep = 0.5
			Expect(c.Configure(p, 1.0, 5)).To(Succeed())
			c.Start()
			for i := 0; i < 500; i++ {
				Expect(c.Tick()).To(Succeed())
			}

			for _, s := range c.History().Substrate {
				Expect(s).To(BeNumerically(">=", 0))
			}
		})

		It("should grow the volume under the growing policy", func() {
			c.Start()
			for i := 0; i < 100; i++ {
				Expect(c.Tick()).To(Succeed())
			}

			expected := 1.0 + 100*c.Params().FeedRate*c.Params().TimeStep
			Expect(c.State().Volume).To(BeNumerically("~", expected, 1e-9))
		})

		It("should be deterministic", func() {
			other := sim.New()
			c.Start()
			other.Start()
			for i := 0; i < 400; i++ {
				Expect(c.Tick()).To(Succeed())
				Expect(other.Tick()).To(Succeed())
			}

			Expect(c.State()).To(Equal(other.State()))
			Expect(c.History().Biomass).To(Equal(other.History().Biomass))
			Expect(c.History().Substrate).To(Equal(other.History().Substrate))
			Expect(c.History().Product).To(Equal(other.History().Product))
		})
	})

	Context("numeric anomaly", func() {
		It("should stop the run and keep the last good state", func() {
			core, logs := observer.New(zapcore.ErrorLevel)
			c = sim.New(sim.WithLogger(zap.New(core)))

			p := models.DefaultParams()
			p.TimeStep = 1e10
			Expect(c.Configure(p, 1e300, 20)).To(Succeed())
			c.Start()

			err := c.Tick()

			Expect(err).To(HaveOccurred())
			Expect(sim.IsAnomaly(err)).To(BeTrue())
			var stepErr *dynamo.StepError
			Expect(err).To(BeAssignableToTypeOf(stepErr))
			Expect(c.RunState()).To(Equal(sim.Idle))
			Expect(c.State()).To(Equal(models.InitialState(1e300, 20)))
			Expect(c.History().Len()).To(BeZero())
			Expect(logs.FilterMessage("integration step failed").Len()).To(Equal(1))
		})
	})

	Context("with history options", func() {
		It("should bound the history when a capacity is set", func() {
			c = sim.New(sim.WithHistory(history.Options{Capacity: 50}))
			c.Start()
			for i := 0; i < 120; i++ {
				Expect(c.Tick()).To(Succeed())
			}

			h := c.History()
			Expect(h.Biomass).To(HaveLen(50))
			Expect(h.Biomass[49]).To(Equal(c.State().Biomass))
			Expect(c.HistoryOptions().Capacity).To(Equal(50))
		})
	})

	Context("with metrics and observers", func() {
		It("should observe every tick and reset on start", func() {
			obs := &countingObserver{}
			c = sim.New(sim.WithMetrics(metrics.Default()...), sim.WithObserver(obs))

			c.Start()
			for i := 0; i < 40; i++ {
				Expect(c.Tick()).To(Succeed())
			}

			Expect(obs.steps).To(Equal(40))
			Expect(obs.lastT).To(BeNumerically("~", c.Elapsed(), 1e-12))
			Expect(c.Metrics()).To(HaveKeyWithValue("peak_biomass", c.State().Biomass))
			Expect(c.MetricNames()).To(ContainElement("productivity"))

			c.Start()
			Expect(c.Metrics()["peak_biomass"]).To(BeZero())
			Expect(c.Metrics()["substrate_depletion_time"]).To(Equal(-1.0))
		})
	})

	Context("RunFor", func() {
		It("should integrate the requested duration and finish idle", func() {
			Expect(c.RunFor(3.0)).To(Succeed())

			Expect(c.RunState()).To(Equal(sim.Idle))
			Expect(c.Steps()).To(Equal(100))
			Expect(c.History().Len()).To(Equal(100))
			Expect(math.Abs(c.Elapsed() - 3.0)).To(BeNumerically("<", 1e-9))
		})
	})
})
