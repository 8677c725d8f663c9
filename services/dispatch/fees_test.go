package dispatch

import (
	"testing"

	"homefix/models"
)

func TestComputePenalty(t *testing.T) {
	fees := FeeConfig{CancellationFee: 150, VisitingFee: 250}

	cases := []struct {
		reached models.BookingStatus
		want    float64
	}{
		{models.StatusRequested, 0},
		{models.StatusSearching, 0},
		{models.StatusAssigned, 150},
		{models.StatusJourneyStarted, 150},
		{models.StatusVisited, 250},
		{models.StatusInProgress, 250},
		{models.StatusWorkDone, 250},
	}
	for _, tc := range cases {
		if got := ComputePenalty(tc.reached, fees); got != tc.want {
			t.Errorf("ComputePenalty(%s) = %v, want %v", tc.reached, got, tc.want)
		}
	}
}

func TestComputePenaltyUnknownStatusChargesNothing(t *testing.T) {
	fees := FeeConfig{CancellationFee: 150, VisitingFee: 250}
	if got := ComputePenalty(models.StatusCompleted, fees); got != 0 {
		t.Errorf("ComputePenalty(COMPLETED) = %v, want 0", got)
	}
	if got := ComputePenalty(models.BookingStatus("BOGUS"), fees); got != 0 {
		t.Errorf("ComputePenalty(BOGUS) = %v, want 0", got)
	}
}

func TestRadiusForWave(t *testing.T) {
	cfg := Config{InitialRadiusKm: 2, RadiusStepKm: 2, MaxRadiusKm: 10}

	cases := []struct {
		wave int
		want float64
	}{
		{0, 2},
		{1, 4},
		{3, 8},
		{4, 10},
		{5, 10}, // capped
		{100, 10},
	}
	for _, tc := range cases {
		if got := cfg.RadiusForWave(tc.wave); got != tc.want {
			t.Errorf("RadiusForWave(%d) = %v, want %v", tc.wave, got, tc.want)
		}
	}
}
