package progress

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestSpinner(t *testing.T) {
	spinner := NewSpinner("loading")
	defer spinner.Stop()

	str := spinner.String()
	if !strings.HasPrefix(str, "loading ") {
		t.Errorf("String() should start with the message, got %q", str)
	}

	if !slices.ContainsFunc(spinner.parts, func(part string) bool { return strings.Contains(str, part) }) {
		t.Errorf("String() should contain a spinner character, got %q", str)
	}

	spinner.SetMessage("training")
	if str := spinner.String(); !strings.HasPrefix(str, "training ") {
		t.Errorf("String() should use the new message, got %q", str)
	}
}

func TestSpinnerAdvances(t *testing.T) {
	spinner := NewSpinner("")
	defer spinner.Stop()

	first := spinner.String()
	time.Sleep(250 * time.Millisecond)
	if spinner.String() == first {
		t.Errorf("spinner should advance, still %q", first)
	}
}

func TestSpinnerStop(t *testing.T) {
	spinner := NewSpinner("done")
	spinner.Stop()
	spinner.Stop()

	if str := spinner.String(); str != "done " {
		t.Errorf("String() = %q, want %q", str, "done ")
	}
}
