package dispatch

import (
	"homefix/config"
	"homefix/models"
)

// FeeConfig holds the configured cancellation charges.
type FeeConfig struct {
	// CancellationFee applies once a provider has been assigned but has not
	// yet arrived.
	CancellationFee float64
	// VisitingFee applies once the provider has visited, typically >= the
	// cancellation fee.
	VisitingFee float64
}

// FeesFromApp builds a FeeConfig from the loaded application config.
func FeesFromApp() FeeConfig {
	return FeeConfig{
		CancellationFee: config.AppConfig.FeeCancellation,
		VisitingFee:     config.AppConfig.FeeVisiting,
	}
}

// ComputePenalty maps the stage a booking reached at cancellation time to the
// fee owed. Pure function, no side effects; the caller attaches the result to
// the CANCELLED transition in the same atomic update.
func ComputePenalty(reached models.BookingStatus, fees FeeConfig) float64 {
	switch reached {
	case models.StatusRequested, models.StatusSearching:
		return 0
	case models.StatusAssigned, models.StatusJourneyStarted:
		return fees.CancellationFee
	case models.StatusVisited, models.StatusInProgress, models.StatusWorkDone:
		return fees.VisitingFee
	default:
		return 0
	}
}
