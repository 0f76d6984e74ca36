package format

import (
	"testing"
	"time"
)

func TestHumanNumber(t *testing.T) {
	type testCase struct {
		input    uint64
		expected string
	}

	testCases := []testCase{
		{0, "0"},
		{100, "100"},
		{1000, "1.00K"},
		{26000, "26.0K"},
		{1000000, "1.00M"},
		{206000000, "206M"},
		{1000000000, "1.00B"},
		{1000000000000, "1.00T"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			result := HumanNumber(tc.input)
			if result != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, result)
			}
		})
	}
}

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1.0 KB"},
		{1536, "1.5 KB"},
		{4200000, "4.2 MB"},
		{2500000000, "2.5 GB"},
		{1000000000000, "1.0 TB"},
	}

	for _, tc := range cases {
		if got := HumanBytes(tc.input); got != tc.expected {
			t.Errorf("HumanBytes(%d) = %s, want %s", tc.input, got, tc.expected)
		}
	}
}

func TestPercentAndRatio(t *testing.T) {
	if got := Percent(1); got != "100.0%" {
		t.Errorf("Percent(1) = %s", got)
	}

	if got := Percent(0.125); got != "12.5%" {
		t.Errorf("Percent(0.125) = %s", got)
	}

	if got := Ratio(3.4159); got != "3.42x" {
		t.Errorf("Ratio(3.4159) = %s", got)
	}
}

func TestDuration(t *testing.T) {
	cases := map[time.Duration]string{
		1500 * time.Microsecond:     "1.5ms",
		90 * time.Second:            "1m30s",
		2*time.Hour + 5*time.Minute: "2h5m",
		150 * time.Hour:             "99h+",
	}

	for in, want := range cases {
		if got := Duration(in); got != want {
			t.Errorf("Duration(%v) = %s, want %s", in, got, want)
		}
	}
}
