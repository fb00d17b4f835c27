package tripsim_test

import (
	"testing"

	"github.com/viajaperu/tripsim/internal/core/tripsim"
)

func TestFormatDistance(t *testing.T) {
	if got := tripsim.FormatDistance(31.46); got != "31.5 km" {
		t.Errorf("expected 31.5 km, got %s", got)
	}
}

func TestEstimateMinutes(t *testing.T) {
	if got := tripsim.EstimateMinutes(31.5, 55); got != 34 {
		t.Errorf("expected 34, got %d", got)
	}
	if got := tripsim.EstimateMinutes(10, 0); got != 0 {
		t.Errorf("expected 0 for zero speed, got %d", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		0:   "0 min",
		34:  "34 min",
		59:  "59 min",
		60:  "1h 0min",
		61:  "1h 1min",
		135: "2h 15min",
	}
	for in, want := range cases {
		if got := tripsim.FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %s, want %s", in, got, want)
		}
	}
}
