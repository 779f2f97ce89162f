package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveResult(t *testing.T) {
	kind := func(error) string { return "InvalidCredentials" }

	before := testutil.ToFloat64(LoginsTotal.WithLabelValues(ResultOK))
	ObserveResult(LoginsTotal, nil, kind)
	if got := testutil.ToFloat64(LoginsTotal.WithLabelValues(ResultOK)); got != before+1 {
		t.Fatalf("ok counter = %v, want %v", got, before+1)
	}

	beforeFail := testutil.ToFloat64(LoginsTotal.WithLabelValues("InvalidCredentials"))
	ObserveResult(LoginsTotal, errors.New("nope"), kind)
	if got := testutil.ToFloat64(LoginsTotal.WithLabelValues("InvalidCredentials")); got != beforeFail+1 {
		t.Fatalf("failure counter = %v, want %v", got, beforeFail+1)
	}
}
