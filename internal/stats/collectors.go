package stats

// Noop is a collector that discards all metrics.
type Noop struct{}

// Compile-time check that Noop implements Collector.
var _ Collector = (*Noop)(nil)

// NewNoop creates a new no-op collector.
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) IncCounter(name string, delta int64)         {}
func (n *Noop) SetGauge(name string, value int64)           {}
func (n *Noop) ObserveHistogram(name string, value float64) {}

// Tee forwards every metric to each of its collectors in order.
type Tee []Collector

// Compile-time check that Tee implements Collector.
var _ Collector = Tee(nil)

// NewTee returns a collector that records to all of cs. Nil entries are
// skipped; with a single collector left, it is returned as is.
func NewTee(cs ...Collector) Collector {
	var t Tee
	for _, c := range cs {
		if c != nil {
			t = append(t, c)
		}
	}
	switch len(t) {
	case 0:
		return NewNoop()
	case 1:
		return t[0]
	}
	return t
}

func (t Tee) IncCounter(name string, delta int64) {
	for _, c := range t {
		c.IncCounter(name, delta)
	}
}

func (t Tee) SetGauge(name string, value int64) {
	for _, c := range t {
		c.SetGauge(name, value)
	}
}

func (t Tee) ObserveHistogram(name string, value float64) {
	for _, c := range t {
		c.ObserveHistogram(name, value)
	}
}
