package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterFrames   *prometheus.CounterVec
	CounterReps     *prometheus.CounterVec
	CounterWarnings *prometheus.CounterVec
	CounterRejected *prometheus.CounterVec
	CounterSwitches prometheus.Counter

	// gauges
	GaugeBarDetected prometheus.Gauge
}

func NewTestManager() *Manager {
	return NewManager("reps", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("reps", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterFrames := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_total",
		Help:      "The total number of pose frames processed",
	}, []string{"exercise", "valid"})
	counterReps := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reps_total",
		Help:      "The total number of counted reps",
	}, []string{"exercise"})
	counterWarnings := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "warnings_total",
		Help:      "The total number of form warnings emitted",
	}, []string{"exercise"})
	counterRejected := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rejected_reps_total",
		Help:      "Completed reps that were not counted because of a form violation",
	}, []string{"exercise"})
	counterSwitches := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "exercise_switches_total",
		Help:      "The total number of exercise selections",
	})

	gaugeBar := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "bar_detected",
		Help:      "Whether the pull-up bar is currently detected (1) or not (0)",
	})

	return &Manager{
		CounterFrames:    counterFrames,
		CounterReps:      counterReps,
		CounterWarnings:  counterWarnings,
		CounterRejected:  counterRejected,
		CounterSwitches:  counterSwitches,
		GaugeBarDetected: gaugeBar,
	}
}

// ObserveFrame records one processed frame. A nil manager is a no-op so
// callers can leave metrics disabled.
func (m *Manager) ObserveFrame(exercise string, valid bool) {
	if m == nil {
		return
	}
	m.CounterFrames.WithLabelValues(exercise, strconv.FormatBool(valid)).Inc()
}

// AddReps records newly counted and newly rejected reps.
func (m *Manager) AddReps(exercise string, counted, rejected int) {
	if m == nil {
		return
	}
	if counted > 0 {
		m.CounterReps.WithLabelValues(exercise).Add(float64(counted))
	}
	if rejected > 0 {
		m.CounterRejected.WithLabelValues(exercise).Add(float64(rejected))
	}
}

func (m *Manager) AddWarnings(exercise string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CounterWarnings.WithLabelValues(exercise).Add(float64(n))
}

func (m *Manager) Switched() {
	if m == nil {
		return
	}
	m.CounterSwitches.Inc()
}

func (m *Manager) SetBarDetected(found bool) {
	if m == nil {
		return
	}
	if found {
		m.GaugeBarDetected.Set(1)
	} else {
		m.GaugeBarDetected.Set(0)
	}
}
