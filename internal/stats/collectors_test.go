package stats

import "testing"

type recorder struct {
	counters map[string]int64
	gauges   map[string]int64
	observed []float64
}

func newRecorder() *recorder {
	return &recorder{counters: map[string]int64{}, gauges: map[string]int64{}}
}

func (r *recorder) IncCounter(name string, delta int64)         { r.counters[name] += delta }
func (r *recorder) SetGauge(name string, value int64)           { r.gauges[name] = value }
func (r *recorder) ObserveHistogram(name string, value float64) { r.observed = append(r.observed, value) }

func TestTee(t *testing.T) {
	a, b := newRecorder(), newRecorder()
	c := NewTee(a, nil, b)

	c.IncCounter(MetricPuts, 2)
	c.IncCounter(MetricPuts, 1)
	c.SetGauge(MetricCacheSize, 7)
	c.ObserveHistogram(MetricCodeWidth, 12)

	for i, r := range []*recorder{a, b} {
		if r.counters[MetricPuts] != 3 || r.gauges[MetricCacheSize] != 7 || len(r.observed) != 1 {
			t.Errorf("collector %d: counters = %v, gauges = %v, observed = %v", i, r.counters, r.gauges, r.observed)
		}
	}
}

func TestNewTee_Collapses(t *testing.T) {
	if _, ok := NewTee().(*Noop); !ok {
		t.Error("NewTee() with no collectors is not a Noop")
	}
	r := newRecorder()
	if got := NewTee(nil, r); got != Collector(r) {
		t.Errorf("NewTee(nil, r) = %T, want the single collector", got)
	}
}
