package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeCounter struct {
	fields, records int
	err             error
}

func (f fakeCounter) CountFields() (int, error)  { return f.fields, f.err }
func (f fakeCounter) CountRecords() (int, error) { return f.records, nil }

func TestRefresh(t *testing.T) {
	if err := Refresh(fakeCounter{fields: 4, records: 9}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := testutil.ToFloat64(Fields); got != 4 {
		t.Fatalf("fields gauge = %v", got)
	}
	if got := testutil.ToFloat64(Records); got != 9 {
		t.Fatalf("records gauge = %v", got)
	}

	err := Refresh(fakeCounter{fields: 1, records: 2, err: errors.New("corrupt")})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := testutil.ToFloat64(Fields); got != 4 {
		t.Fatalf("fields gauge changed on error: %v", got)
	}
	if got := testutil.ToFloat64(Records); got != 2 {
		t.Fatalf("records gauge = %v", got)
	}
}
