package display

import (
	"context"
	"sync"
	"testing"
	"time"

	"wavegen-go/bus"
	"wavegen-go/types"
)

// fakeScreen records what would appear on the panel.
type fakeScreen struct {
	mu     sync.Mutex
	lines  [2]string
	row    uint8
	clears int
}

func (f *fakeScreen) ClearDisplay() error {
	f.mu.Lock()
	f.lines = [2]string{}
	f.clears++
	f.mu.Unlock()
	return nil
}

func (f *fakeScreen) SetCursor(col, row uint8) error {
	f.mu.Lock()
	f.row = row
	f.mu.Unlock()
	return nil
}

func (f *fakeScreen) Print(data []byte) error {
	f.mu.Lock()
	f.lines[f.row] += string(data)
	f.mu.Unlock()
	return nil
}

func (f *fakeScreen) snapshot() ([2]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lines, f.clears
}

func TestShow_RendersStatus(t *testing.T) {
	f := &fakeScreen{}
	s := New(f, nil)

	err := s.show(types.GeneratorStatus{
		FreqHz:    1000,
		PeriodUs:  1000,
		Prescaler: 1,
		Compare:   7999,
		Pin:       "A",
	})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if f.lines[0] != "1000.00 Hz A" {
		t.Errorf("line 1 = %q", f.lines[0])
	}
	if f.lines[1] != "P1 OCR 7999" {
		t.Errorf("line 2 = %q", f.lines[1])
	}
}

func TestShow_TruncatesToPanelWidth(t *testing.T) {
	f := &fakeScreen{}
	s := New(f, nil)

	err := s.show(types.GeneratorStatus{
		FreqHz:    0.11920928955078125,
		PeriodUs:  8388608,
		Prescaler: 1024,
		Compare:   65535,
		Pin:       "B",
	})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for i, line := range f.lines {
		if len(line) > 16 {
			t.Errorf("line %d = %q, longer than 16 columns", i+1, line)
		}
	}
	if f.lines[1] != "P1024 OCR 65535" {
		t.Errorf("line 2 = %q", f.lines[1])
	}
}

func TestServiceLoop_PaintsRetainedStatus(t *testing.T) {
	b := bus.NewBus(8)

	// Retained status published before the display starts.
	pub := b.NewConnection("test-generator")
	pub.Publish(&bus.Message{
		Topic: bus.Topic{"status", "generator"},
		Payload: types.GeneratorStatus{
			FreqHz: 500, PeriodUs: 2000, Prescaler: 1, Compare: 15999, Pin: "A",
		},
		Retained: true,
	})

	f := &fakeScreen{}
	s := New(f, b.NewConnection("test-display"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	var lines [2]string
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		lines, _ = f.snapshot()
		if lines[1] != "" {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if lines[0] != "500.00 Hz A" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "P1 OCR 15999" {
		t.Errorf("line 2 = %q", lines[1])
	}
}
