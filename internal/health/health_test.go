package health

import "testing"

func TestComputeWellbeing(t *testing.T) {
	tests := []struct {
		name                          string
		fullness, cleanliness, company float64
		mode                          ComputationMode
		want                          int
	}{
		{"average", 90, 60, 30, ComputationAverage, 60},
		{"weighted", 90, 60, 30, ComputationWeighted, 60},
		{"weighted favors food", 100, 0, 100, ComputationWeighted, 80},
		{"unknown mode averages", 30, 30, 30, "", 30},
		{"clamped high", 300, 300, 300, ComputationAverage, 100},
		{"clamped low", -50, 0, 0, ComputationAverage, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeWellbeing(tt.fullness, tt.cleanliness, tt.company, tt.mode); got != tt.want {
				t.Errorf("ComputeWellbeing() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio(1, 3); got < 33 || got > 34 {
		t.Errorf("Ratio(1, 3) = %v", got)
	}
	if got := Ratio(5, 3); got != 100 {
		t.Errorf("Ratio(5, 3) = %v, want 100", got)
	}
	if got := Ratio(1, 0); got != 100 {
		t.Errorf("Ratio(1, 0) = %v, want 100", got)
	}
}
