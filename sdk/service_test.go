package sdk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/faciam-dev/gcform/internal/events"
	"github.com/faciam-dev/gcform/internal/recordstore"
	"github.com/faciam-dev/gcform/internal/schemastore"
	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/validate"
)

type memSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *memSink) Emit(_ context.Context, e events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memSink) names() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, e := range m.events {
		out[e.Name]++
	}
	return out
}

func ptr(f float64) *float64 { return &f }

var fixed = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T, sink events.Sink) *Service {
	t.Helper()
	dir := t.TempDir()
	cfg := ServiceConfig{
		SchemaPath: filepath.Join(dir, "form_config.yaml"),
		RecordPath: filepath.Join(dir, "input_data.yaml"),
		Now:        func() time.Time { return fixed },
	}
	if sink != nil {
		cfg.Events = events.NewDispatcher(events.Config{}, nil, sink)
	}
	svc := New(cfg)
	t.Cleanup(svc.Close)
	return svc
}

func TestAddFieldAutoOrder(t *testing.T) {
	svc := newService(t, nil)
	for _, f := range []schema.Field{
		{Label: "A", Type: schema.TypeString, DisplayOrder: AutoOrder},
		{Label: "B", Type: schema.TypeNumber, DisplayOrder: 0},
		{Label: "C", Type: schema.TypeDate, DisplayOrder: AutoOrder},
	} {
		if _, _, err := svc.AddField(f); err != nil {
			t.Fatalf("add %s: %v", f.Label, err)
		}
	}
	fields, err := svc.SortedFields()
	if err != nil {
		t.Fatalf("sorted: %v", err)
	}
	got := map[string]int{}
	for _, f := range fields {
		got[f.Label] = f.DisplayOrder
	}
	want := map[string]int{"A": 1, "B": 0, "C": 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("orders mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"B", "A", "C"}, schema.Labels(fields)); diff != "" {
		t.Fatalf("display order mismatch (-want +got):\n%s", diff)
	}
}

func TestAddFieldDuplicate(t *testing.T) {
	svc := newService(t, nil)
	if _, _, err := svc.AddField(schema.Field{Label: "A", Type: schema.TypeString}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, _, err := svc.AddField(schema.Field{Label: "A", Type: schema.TypeNumber})
	if !errors.Is(err, ErrDuplicateLabel) {
		t.Fatalf("expected ErrDuplicateLabel, got %v", err)
	}
}

func TestUpdateFieldKeepsOrder(t *testing.T) {
	svc := newService(t, nil)
	if _, _, err := svc.AddField(schema.Field{Label: "A", Type: schema.TypeString, DisplayOrder: 7}); err != nil {
		t.Fatalf("add: %v", err)
	}
	f, err := svc.UpdateField(0, schema.Field{Label: "A2", Type: schema.TypeString, DisplayOrder: AutoOrder})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if f.DisplayOrder != 7 || f.Label != "A2" {
		t.Fatalf("unexpected field %+v", f)
	}
	if _, err := svc.UpdateField(3, f); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func seed(t *testing.T, svc *Service) {
	t.Helper()
	for _, f := range []schema.Field{
		{Label: "電圧", Type: schema.TypeNumber, Required: true, DisplayOrder: 1, MinValue: ptr(0), MaxValue: ptr(100), Unit: "V"},
		{Label: "外観", Type: schema.TypeString, DisplayOrder: 2},
	} {
		if _, _, err := svc.AddField(f); err != nil {
			t.Fatalf("add %s: %v", f.Label, err)
		}
	}
}

func TestSubmit(t *testing.T) {
	svc := newService(t, nil)
	seed(t, svc)

	d := svc.NewDraft()
	d.Header = record.Header{ProductName: "製品A", LotNo: "LOT-1"}
	d.Set("電圧", "150")
	d.Set("外観", "OK")
	_, err := svc.Submit(d)
	errs, ok := validate.AsErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if diff := cmp.Diff([]validate.Code{validate.CodeRangeMax}, errs.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if _, ok := d.Get("外観"); !ok {
		t.Fatalf("draft must survive a rejected submission")
	}

	d.Set("電圧", "12.5")
	rec, err := svc.Submit(d)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.EntryDate != "2025-01-02" || rec.ProductName != "製品A" {
		t.Fatalf("unexpected header %+v", rec.Header)
	}
	if diff := cmp.Diff([]string{"電圧", "外観"}, rec.Details.Keys()); diff != "" {
		t.Fatalf("details mismatch (-want +got):\n%s", diff)
	}
	if _, ok := d.Get("外観"); ok || d.Header.LotNo != "" {
		t.Fatalf("draft must be cleared after a stored submission")
	}

	recs, err := svc.Records()
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != rec.ID {
		t.Fatalf("unexpected history %+v", recs)
	}
}

func TestSubmitMissingHeader(t *testing.T) {
	svc := newService(t, nil)
	seed(t, svc)
	d := svc.NewDraft()
	d.Header.ProductName = "  "
	d.Header.LotNo = "LOT-1"
	if _, err := svc.Submit(d); !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("expected ErrMissingHeader, got %v", err)
	}
}

func TestSchemaChangeAffectsLaterSubmissionsOnly(t *testing.T) {
	svc := newService(t, nil)
	seed(t, svc)
	d := svc.NewDraft()
	d.Header = record.Header{ProductName: "P", LotNo: "L"}
	d.Set("電圧", 5)
	if _, err := svc.Submit(d); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.DeleteField(0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	recs, err := svc.Records()
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if _, ok := recs[0].Details.Get("電圧"); !ok {
		t.Fatalf("stored record lost a deleted label")
	}
}

func TestEventsEmitted(t *testing.T) {
	sink := &memSink{}
	svc := newService(t, sink)
	seed(t, svc)
	d := svc.NewDraft()
	d.Header = record.Header{ProductName: "P", LotNo: "L"}
	if _, err := svc.Submit(d); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.ResetRecords(); err != nil {
		t.Fatalf("reset records: %v", err)
	}
	if err := svc.ResetSchema(); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	svc.Close()
	want := map[string]int{
		events.SchemaChanged:  2,
		events.RecordAppended: 1,
		events.RecordsReset:   1,
		events.SchemaReset:    1,
	}
	if diff := cmp.Diff(want, sink.names()); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestLayout(t *testing.T) {
	svc := newService(t, nil)
	for _, l := range []string{"A", "B", "C", "D"} {
		if _, _, err := svc.AddField(schema.Field{Label: l, Type: schema.TypeString, DisplayOrder: AutoOrder}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	cells, err := svc.Layout(2)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	type pos struct {
		Label    string
		Row, Col int
	}
	var got []pos
	for _, c := range cells {
		got = append(got, pos{c.Field.Label, c.Row, c.Col})
	}
	want := []pos{{"A", 0, 0}, {"B", 0, 1}, {"C", 1, 0}, {"D", 1, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestCorruptSchema(t *testing.T) {
	svc := newService(t, nil)
	if err := os.WriteFile(svc.SchemaPath(), []byte("version: \"9\"\nfields: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Fields()
	if !IsCorrupt(err) {
		t.Fatalf("expected corrupt error, got %v", err)
	}
	moved, err := svc.QuarantineSchema()
	if err != nil {
		t.Fatalf("quarantine: %v", err)
	}
	if _, err := os.Stat(moved); err != nil {
		t.Fatalf("quarantined file missing: %v", err)
	}
	fields, err := svc.Fields()
	if err != nil || len(fields) != 0 {
		t.Fatalf("expected empty schema after quarantine, got %v %v", fields, err)
	}
}

func TestDiffSchemas(t *testing.T) {
	a := []byte("version: \"1\"\nfields:\n  - label: A\n    type: string\n    display_order: 1\n")
	b := []byte(`[{"label_name": "A", "data_type": "数値", "display_order": 1}, {"label_name": "B", "display_order": 2}]`)
	d, err := DiffSchemas(a, b)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	want := schema.DiffReport{Added: 1, Updated: 1}
	if diff := cmp.Diff(want, d.Report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	if d.Text == "" {
		t.Fatalf("expected unified diff text")
	}
}

func TestSchemaReloaded(t *testing.T) {
	sink := &memSink{}
	svc := newService(t, sink)
	seed(t, svc)
	if err := svc.SchemaReloaded(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	doc := "version: \"1\"\nfields:\n  - label: X\n    type: string\n    display_order: 1\n"
	if err := os.WriteFile(svc.SchemaPath(), []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := svc.SchemaReloaded(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	svc.Close()
	if got := sink.names()[events.SchemaChanged]; got != 3 {
		t.Fatalf("expected 2 appends and 1 reload, got %d schema events", got)
	}
}

func TestAddFieldReturnsIndex(t *testing.T) {
	svc := newService(t, nil)
	for want, l := range []string{"A", "B", "C"} {
		_, got, err := svc.AddField(schema.Field{Label: l, Type: schema.TypeString, DisplayOrder: AutoOrder})
		if err != nil {
			t.Fatalf("add %s: %v", l, err)
		}
		if got != want {
			t.Fatalf("index of %s = %d, want %d", l, got, want)
		}
	}
}

func TestSubscribersMayCallBack(t *testing.T) {
	svc := newService(t, nil)
	var rows [][]string
	svc.SubscribeSchema(func(schemastore.Event) {
		cells, err := svc.Layout(0)
		if err != nil {
			t.Errorf("layout: %v", err)
			return
		}
		var labels []string
		for _, c := range cells {
			labels = append(labels, c.Field.Label)
		}
		rows = append(rows, labels)
	})
	var counts []int
	svc.SubscribeRecords(func(recordstore.Event) {
		recs, err := svc.Records()
		if err != nil {
			t.Errorf("records: %v", err)
			return
		}
		counts = append(counts, len(recs))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, l := range []string{"電圧", "外観"} {
			if _, _, err := svc.AddField(schema.Field{Label: l, Type: schema.TypeString, DisplayOrder: AutoOrder}); err != nil {
				t.Errorf("add %s: %v", l, err)
			}
		}
		d := svc.NewDraft()
		d.Header = record.Header{ProductName: "製品A", LotNo: "LOT-1"}
		if _, err := svc.Submit(d); err != nil {
			t.Errorf("submit: %v", err)
		}
		if err := svc.ResetRecords(); err != nil {
			t.Errorf("reset: %v", err)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("mutation blocked on a subscriber reading the service")
	}

	if diff := cmp.Diff([][]string{{"電圧"}, {"電圧", "外観"}}, rows); diff != "" {
		t.Fatalf("layouts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 0}, counts); diff != "" {
		t.Fatalf("record counts mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaReloadedAfterRead(t *testing.T) {
	sink := &memSink{}
	svc := newService(t, sink)
	seed(t, svc)
	doc := "version: \"1\"\nfields:\n  - label: X\n    type: string\n    display_order: 1\n"
	if err := os.WriteFile(svc.SchemaPath(), []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Fields(); err != nil {
		t.Fatalf("fields: %v", err)
	}
	if err := svc.SchemaReloaded(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	svc.Close()
	if got := sink.names()[events.SchemaChanged]; got != 3 {
		t.Fatalf("expected 2 appends and 1 reload, got %d schema events", got)
	}
}
