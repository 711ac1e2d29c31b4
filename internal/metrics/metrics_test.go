package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []counterCall
	histograms []histCall
	flushCount int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func TestRecordStageSuccessAndFailure(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordStage("jobA", "ingest", nil, 2*time.Second)
	RecordStage("jobB", "ingest", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.counters) != 2 || len(fb.histograms) != 2 {
		t.Fatalf("calls = %d counters / %d histograms, want 2/2", len(fb.counters), len(fb.histograms))
	}
	if fb.counters[0].labels["status"] != "success" {
		t.Fatalf("counter[0] status = %q, want success", fb.counters[0].labels["status"])
	}
	if fb.counters[1].labels["status"] != "failure" {
		t.Fatalf("counter[1] status = %q, want failure", fb.counters[1].labels["status"])
	}
	if v := fb.histograms[0].value; v < 1.999 || v > 2.001 {
		t.Fatalf("histogram[0] = %v, want ~2.0", v)
	}
}

func TestRecordRowsIgnoresNonPositive(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	backend = fb

	RecordRows("job", "read", 3)
	RecordRows("job", "read", 0)
	RecordRows("job", "kept", -1)

	if len(fb.counters) != 1 {
		t.Fatalf("counter calls = %d, want 1", len(fb.counters))
	}
	if fb.counters[0].delta != 3 {
		t.Fatalf("delta = %v, want 3", fb.counters[0].delta)
	}
}

func TestSetBackendNilKeepsCurrent(t *testing.T) {
	orig := backend
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	SetBackend(nil)

	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("flushCount = %d, want 1 (nil must not replace backend)", fb.flushCount)
	}
}
