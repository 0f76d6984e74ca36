package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type mockState struct {
	value string
}

func (m *mockState) String() string {
	return m.value
}

// syncBuffer guards a bytes.Buffer written by the render goroutine.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestProgressStop(t *testing.T) {
	var buf syncBuffer
	p := NewProgress(&buf)
	p.Add(&mockState{value: "counting words"})

	if !p.Stop() {
		t.Error("Stop() should return true on first call")
	}

	if p.Stop() {
		t.Error("Stop() should return false on subsequent calls")
	}

	out := buf.String()
	if !strings.Contains(out, "counting words") {
		t.Errorf("output should contain the state, got %q", out)
	}

	if !strings.HasSuffix(out, "\033[?25h") {
		t.Errorf("output should end by showing the cursor, got %q", out)
	}
}

func TestProgressRender(t *testing.T) {
	var buf syncBuffer
	p := NewProgress(&buf)
	p.Add(&mockState{value: "first"})
	p.Add(&mockState{value: "second"})

	time.Sleep(250 * time.Millisecond)
	p.Stop()

	out := buf.String()
	for _, want := range []string{"first", "second", "\033[A"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got %q", want, out)
		}
	}
}

func TestProgressStopAndClear(t *testing.T) {
	var buf syncBuffer
	p := NewProgress(&buf)
	p.Add(&mockState{value: "test"})

	if !p.StopAndClear() {
		t.Error("StopAndClear() should return true on first call")
	}

	if out := buf.String(); !strings.Contains(out, "\033[2K") {
		t.Errorf("output should clear the line, got %q", out)
	}
}

func TestProgressStopsSpinners(t *testing.T) {
	var buf syncBuffer
	p := NewProgress(&buf)

	spinner := NewSpinner("loading")
	p.Add(spinner)
	p.Stop()

	if !spinner.stopped.Load() {
		t.Error("Stop() should stop spinners")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
