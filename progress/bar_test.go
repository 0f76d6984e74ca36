package progress

import (
	"strings"
	"testing"
	"time"
)

func TestBarString(t *testing.T) {
	tests := []struct {
		name    string
		message string
		unit    string
		max     int64
		value   int64
		want    []string
	}{
		{
			name:    "start",
			message: "training",
			unit:    "merges",
			max:     988,
			value:   0,
			want:    []string{"training", "  0%", "(0/988 merges)"},
		},
		{
			name:    "half",
			message: "training",
			unit:    "merges",
			max:     2000,
			value:   1000,
			want:    []string{" 50%", "(1.00K/2.00K merges)", "▕", "▏"},
		},
		{
			name:  "clamped",
			max:   10,
			value: 20,
			want:  []string{"100%", "(10/10)"},
		},
		{
			name: "zero max",
			max:  0,
			want: []string{"  0%", "(0/0)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(tt.message, tt.unit, tt.max, 0)
			bar.Set(tt.value)

			str := bar.String()
			for _, want := range tt.want {
				if !strings.Contains(str, want) {
					t.Errorf("String() = %q, should contain %q", str, want)
				}
			}
		})
	}
}

func TestBarSetMax(t *testing.T) {
	bar := NewBar("", "merges", 100, 0)
	bar.Set(40)
	bar.SetMax(40)

	if str := bar.String(); !strings.Contains(str, "100%") {
		t.Errorf("String() = %q, should be complete", str)
	}

	bar.SetMax(20)
	if bar.currentValue != 20 {
		t.Errorf("currentValue = %d, want 20", bar.currentValue)
	}
}

func TestBarRate(t *testing.T) {
	bar := NewBar("training", "merges", 100, 0)
	bar.String()

	bar.Set(30)
	bar.statted = time.Now().Add(-2 * time.Second)

	str := bar.String()
	for _, want := range []string{"30/s", "[", "]"} {
		if !strings.Contains(str, want) {
			t.Errorf("String() = %q, should contain %q", str, want)
		}
	}
}
