package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSubmission(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(SubmissionCounter.WithLabelValues(OutcomeDuplicate))
	ObserveSubmission(OutcomeDuplicate, 0)
	after := testutil.ToFloat64(SubmissionCounter.WithLabelValues(OutcomeDuplicate))
	if after-before != 1 {
		t.Fatalf("duplicate counter delta = %v, want 1", after-before)
	}
}
