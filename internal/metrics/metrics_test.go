package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Mavwarf/alerttone/internal/eventlog"
)

func TestObserverCountsEvents(t *testing.T) {
	before := testutil.ToFloat64(EventsTotal.WithLabelValues("medium", "played"))

	var o Observer
	o.Observe(eventlog.Event{Priority: "medium", Kind: eventlog.KindPlayed})
	o.Observe(eventlog.Event{Priority: "medium", Kind: eventlog.KindPlayed})

	assert.Equal(t, before+2, testutil.ToFloat64(EventsTotal.WithLabelValues("medium", "played")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ActivePriority.WithLabelValues("medium")))

	o.Observe(eventlog.Event{Priority: "medium", Kind: eventlog.KindStopped})
	assert.Equal(t, 0.0, testutil.ToFloat64(ActivePriority.WithLabelValues("medium")))
}

func TestObserverSynthesis(t *testing.T) {
	before := testutil.ToFloat64(SynthesizedBytesTotal)

	Observer{}.Observe(eventlog.Event{
		Priority: "high",
		Kind:     eventlog.KindSynthesized,
		Bytes:    921600,
		Elapsed:  20 * time.Millisecond,
	})

	assert.Equal(t, before+921600, testutil.ToFloat64(SynthesizedBytesTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(SynthesisDuration))
}
