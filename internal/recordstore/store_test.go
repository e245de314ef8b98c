package recordstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/faciam-dev/gcform/pkg/codec"
	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/value"
)

type clock struct{ times []time.Time }

func (c *clock) now() time.Time {
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func header(lot string) record.Header {
	return record.Header{EntryDate: "2025-01-01", ProductName: "製品A", LotNo: lot}
}

func TestAppendLoadAll(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	c := &clock{times: []time.Time{base, base.Add(time.Second)}}
	s := New(filepath.Join(t.TempDir(), "input_data.yaml"), WithClock(c.now), WithIDs(sequentialIDs()))

	details := value.NewMap(2)
	details.Set("電圧", value.Number(decimal.RequireFromString("12.5")))
	details.Set("外観", value.Text(" 良好 "))

	first, err := s.Append(header(" L1 "), details)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID != "id-1" || first.LotNo != "L1" {
		t.Fatalf("record = %+v", first)
	}
	if _, err := s.Append(header("L2"), value.Map{}); err != nil {
		t.Fatalf("append: %v", err)
	}

	recs, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var lots []string
	for _, r := range recs {
		lots = append(lots, r.LotNo)
	}
	if diff := cmp.Diff([]string{"L1", "L2"}, lots); diff != "" {
		t.Fatalf("lots mismatch (-want +got)\n%s", diff)
	}
	if !recs[0].Details.Equal(details) {
		t.Fatalf("details did not round-trip")
	}
	if !recs[0].RegisteredAt.Equal(base) {
		t.Fatalf("registered_at = %v", recs[0].RegisteredAt)
	}
}

func TestAppendMissingHeader(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "input_data.yaml"))
	for _, h := range []record.Header{
		{ProductName: " ", LotNo: "L"},
		{ProductName: "P", LotNo: ""},
	} {
		if _, err := s.Append(h, value.Map{}); !errors.Is(err, ErrMissingHeader) {
			t.Fatalf("header %+v: err = %v", h, err)
		}
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("rejected append created a file: %v", err)
	}
}

func TestAppendEntryDate(t *testing.T) {
	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.Local)
	s := New(filepath.Join(t.TempDir(), "input_data.yaml"), WithClock(func() time.Time { return now }))

	rec, err := s.Append(record.Header{ProductName: "P", LotNo: "L"}, value.Map{})
	if err != nil {
		t.Fatal(err)
	}
	if rec.EntryDate != "2025-02-03" {
		t.Fatalf("entry date = %q", rec.EntryDate)
	}
	_, err = s.Append(record.Header{EntryDate: "03/02/2025", ProductName: "P", LotNo: "L"}, value.Map{})
	if !errors.Is(err, ErrInvalidEntryDate) {
		t.Fatalf("err = %v", err)
	}
}

func TestMonotonicTimestamps(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	c := &clock{times: []time.Time{base, base.Add(-time.Hour), base.Add(time.Minute)}}
	s := New(filepath.Join(t.TempDir(), "input_data.yaml"), WithClock(c.now))

	for _, lot := range []string{"L1", "L2", "L3"} {
		if _, err := s.Append(header(lot), value.Map{}); err != nil {
			t.Fatal(err)
		}
	}
	recs, err := s.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].RegisteredAt.Before(recs[i-1].RegisteredAt) {
			t.Fatalf("record %d goes back in time: %v < %v", i, recs[i].RegisteredAt, recs[i-1].RegisteredAt)
		}
	}
	if !recs[1].RegisteredAt.Equal(base) {
		t.Fatalf("backwards clock not clamped: %v", recs[1].RegisteredAt)
	}
}

func TestResetAndCorrupt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "input_data.yaml")
	s := New(p)
	if err := s.Reset(); err != nil {
		t.Fatalf("reset empty: %v", err)
	}
	if _, err := s.Append(header("L1"), value.Map{}); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if recs, err := s.LoadAll(); err != nil || len(recs) != 0 {
		t.Fatalf("after reset: %v %v", recs, err)
	}

	if err := os.WriteFile(p, []byte("records: {"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadAll(); !errors.Is(err, ErrStoreCorrupt) {
		t.Fatalf("load err = %v", err)
	}
	if _, err := s.Append(header("L2"), value.Map{}); !errors.Is(err, ErrStoreCorrupt) {
		t.Fatalf("append err = %v", err)
	}
	if _, err := s.Quarantine(); err != nil {
		t.Fatalf("quarantine: %v", err)
	}
	if _, err := s.Append(header("L2"), value.Map{}); err != nil {
		t.Fatalf("append after quarantine: %v", err)
	}
}

func TestSubscribe(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "input_data.yaml"), WithIDs(sequentialIDs()))
	var got []string
	cancel := s.Subscribe(func(ev Event) {
		got = append(got, fmt.Sprintf("%s:%s:%d", ev.Type, ev.Record.ID, ev.Count))
	})
	if _, err := s.Append(header("L1"), value.Map{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append(record.Header{}, value.Map{}); err == nil {
		t.Fatal("expected header error")
	}
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	cancel()
	if _, err := s.Append(header("L2"), value.Map{}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"appended:id-1:1", "reset::0"}, got); diff != "" {
		t.Fatalf("events mismatch (-want +got)\n%s", diff)
	}
}

func TestUnsupportedVersion(t *testing.T) {
	p := filepath.Join(t.TempDir(), "input_data.yaml")
	if err := os.WriteFile(p, []byte("version: \"2\"\nrecords: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := New(p).LoadAll()
	if !errors.Is(err, ErrStoreCorrupt) || !errors.Is(err, codec.ErrUnsupportedVersion) {
		t.Fatalf("err = %v", err)
	}
}
