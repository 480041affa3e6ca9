package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Slot load outcomes.
const (
	LoadOK        = "ok"
	LoadEmpty     = "empty"
	LoadMalformed = "malformed"
	LoadError     = "error"
)

var (
	workoutsStored = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trailmark",
		Subsystem: "store",
		Name:      "workouts",
		Help:      "Number of workouts currently held by the session store.",
	})
	workoutsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trailmark",
		Subsystem: "store",
		Name:      "workouts_created_total",
		Help:      "Workouts created, by kind.",
	}, []string{"kind"})
	validationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trailmark",
		Subsystem: "store",
		Name:      "validation_failures_total",
		Help:      "Create or edit requests rejected by numeric validation.",
	})
	slotSaves = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trailmark",
		Subsystem: "slot",
		Name:      "saves_total",
		Help:      "Durable slot writes, by result.",
	}, []string{"result"})
	slotLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trailmark",
		Subsystem: "slot",
		Name:      "loads_total",
		Help:      "Durable slot reads, by outcome.",
	}, []string{"outcome"})
	skippedRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trailmark",
		Subsystem: "slot",
		Name:      "skipped_records_total",
		Help:      "Stored records dropped on load because they could not be reconstructed.",
	})
)

func init() {
	prometheus.MustRegister(workoutsStored, workoutsCreated, validationFailures, slotSaves, slotLoads, skippedRecords)
}

// SetWorkoutsStored updates the store size gauge.
func SetWorkoutsStored(n int) {
	workoutsStored.Set(float64(n))
}

// RecordWorkoutCreated counts a new workout of the given kind.
func RecordWorkoutCreated(kind string) {
	workoutsCreated.WithLabelValues(kind).Inc()
}

// RecordValidationFailure counts a rejected create or edit.
func RecordValidationFailure() {
	validationFailures.Inc()
}

// RecordSave counts a slot write.
func RecordSave(err error) {
	if err != nil {
		slotSaves.WithLabelValues("error").Inc()
		return
	}
	slotSaves.WithLabelValues("ok").Inc()
}

// RecordLoad counts a slot read with one of the Load* outcomes.
func RecordLoad(outcome string) {
	slotLoads.WithLabelValues(outcome).Inc()
}

// RecordSkipped counts records dropped during load.
func RecordSkipped(n int) {
	skippedRecords.Add(float64(n))
}
