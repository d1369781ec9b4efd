// Package history buffers the per-tick samples a run produces for display
// and export.
//
// By default every tick is kept for the life of the run. Capacity turns the
// buffer into a ring that keeps only the newest samples, and Stride records
// one sample every Stride ticks.
package history

// Options configures sample retention.
type Options struct {
	Capacity int `yaml:"capacity"` // 0 keeps everything
	Stride   int `yaml:"stride"`   // <= 1 records every tick
}

type Sample struct {
	Time      float64 `json:"time"`
	Biomass   float64 `json:"biomass"`
	Substrate float64 `json:"substrate"`
	Product   float64 `json:"product"`
}

// Series holds copies of the recorded samples, one slice per variable, all
// in time order.
type Series struct {
	Times     []float64 `json:"times"`
	Biomass   []float64 `json:"biomass"`
	Substrate []float64 `json:"substrate"`
	Product   []float64 `json:"product"`
}

func (s Series) Len() int { return len(s.Times) }

type History struct {
	opts    Options
	samples []Sample
	head    int
	ticks   int
}

func New(opts Options) *History {
	if opts.Capacity < 0 {
		opts.Capacity = 0
	}
	if opts.Stride < 1 {
		opts.Stride = 1
	}
	h := &History{opts: opts}
	if opts.Capacity > 0 {
		h.samples = make([]Sample, 0, opts.Capacity)
	}
	return h
}

func (h *History) Options() Options { return h.opts }

// Record offers one tick's sample and reports whether it was stored.
func (h *History) Record(t, biomass, substrate, product float64) bool {
	h.ticks++
	if h.ticks%h.opts.Stride != 0 {
		return false
	}

	s := Sample{Time: t, Biomass: biomass, Substrate: substrate, Product: product}
	if h.opts.Capacity > 0 && len(h.samples) == h.opts.Capacity {
		h.samples[h.head] = s
		h.head = (h.head + 1) % h.opts.Capacity
		return true
	}
	h.samples = append(h.samples, s)
	return true
}

func (h *History) Reset() {
	h.samples = h.samples[:0]
	h.head = 0
	h.ticks = 0
}

func (h *History) Len() int { return len(h.samples) }

// Samples returns the stored samples oldest first.
func (h *History) Samples() []Sample {
	out := make([]Sample, 0, len(h.samples))
	out = append(out, h.samples[h.head:]...)
	out = append(out, h.samples[:h.head]...)
	return out
}

func (h *History) Last() (Sample, bool) {
	if len(h.samples) == 0 {
		return Sample{}, false
	}
	idx := h.head - 1
	if idx < 0 {
		idx = len(h.samples) - 1
	}
	return h.samples[idx], true
}

func (h *History) Series() Series {
	samples := h.Samples()
	s := Series{
		Times:     make([]float64, len(samples)),
		Biomass:   make([]float64, len(samples)),
		Substrate: make([]float64, len(samples)),
		Product:   make([]float64, len(samples)),
	}
	for i, smp := range samples {
		s.Times[i] = smp.Time
		s.Biomass[i] = smp.Biomass
		s.Substrate[i] = smp.Substrate
		s.Product[i] = smp.Product
	}
	return s
}

func (h *History) Biomass() []float64   { return h.Series().Biomass }
func (h *History) Substrate() []float64 { return h.Series().Substrate }
func (h *History) Product() []float64   { return h.Series().Product }
func (h *History) Times() []float64     { return h.Series().Times }
