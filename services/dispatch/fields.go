package dispatch

// bson field names shared by every conditional update the engine issues.
// They must match the tags on models.Booking.
const (
	fieldProviderID       = "provider_id"
	fieldWorkerID         = "worker_id"
	fieldAssignedAt       = "assigned_at"
	fieldJourneyStartedAt = "journey_started_at"
	fieldVisitedAt        = "visited_at"
	fieldWorkDoneAt       = "work_done_at"
	fieldCompletedAt      = "completed_at"
	fieldCancelledAt      = "cancelled_at"
	fieldCancelReason     = "cancel_reason"
	fieldCancelledBy      = "cancelled_by"
	fieldCancellationFee  = "cancellation_fee"
	fieldStageCode        = "stage_code"
)
