package models

import "time"

// BookingStatus is the closed set of lifecycle states a booking moves through.
// A booking holds exactly one status at any instant.
type BookingStatus string

const (
	StatusRequested      BookingStatus = "REQUESTED"
	StatusSearching      BookingStatus = "SEARCHING"
	StatusAssigned       BookingStatus = "ASSIGNED"
	StatusJourneyStarted BookingStatus = "JOURNEY_STARTED"
	StatusVisited        BookingStatus = "VISITED"
	StatusInProgress     BookingStatus = "IN_PROGRESS"
	StatusWorkDone       BookingStatus = "WORK_DONE"
	StatusCompleted      BookingStatus = "COMPLETED"
	StatusCancelled      BookingStatus = "CANCELLED"
	StatusRejected       BookingStatus = "REJECTED"
	StatusExpired        BookingStatus = "EXPIRED"
)

// AllStatuses lists every defined status, used for input validation.
var AllStatuses = []BookingStatus{
	StatusRequested, StatusSearching, StatusAssigned, StatusJourneyStarted,
	StatusVisited, StatusInProgress, StatusWorkDone, StatusCompleted,
	StatusCancelled, StatusRejected, StatusExpired,
}

var terminalStatuses = map[BookingStatus]bool{
	StatusCompleted: true,
	StatusCancelled: true,
	StatusRejected:  true,
	StatusExpired:   true,
}

// IsTerminal reports whether no further lifecycle transition is legal from s.
func (s BookingStatus) IsTerminal() bool {
	return terminalStatuses[s]
}

// Valid reports whether s is one of the defined statuses.
func (s BookingStatus) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// CancelActor identifies who initiated a cancellation.
type CancelActor string

const (
	ActorCustomer CancelActor = "customer"
	ActorProvider CancelActor = "provider"
	ActorAdmin    CancelActor = "admin"
	ActorSystem   CancelActor = "system"
)

// Booking represents a service request record. It is the single source of
// truth for the dispatch engine; every status decision conditions on the
// stored status, never on an in-memory copy.
type Booking struct {
	ID            string `bson:"id" json:"id"`                       // Unique booking identifier (UUID).
	BookingNumber string `bson:"booking_number" json:"bookingNumber"` // Human-readable reference, e.g. "HF-9F2C41AB".

	UserID     string `bson:"user_id" json:"userId"`
	ProviderID string `bson:"provider_id,omitempty" json:"providerId,omitempty"` // Set when a provider wins the acceptance race.
	WorkerID   string `bson:"worker_id,omitempty" json:"workerId,omitempty"`     // Set when the provider assigns a field worker.

	Status BookingStatus `bson:"status" json:"status"`

	ServiceType string `bson:"service_type" json:"serviceType"`

	Destination      GeoPoint  `bson:"destination" json:"destination"`
	ProviderLocation *GeoPoint `bson:"provider_location,omitempty" json:"providerLocation,omitempty"` // Live position, mutated independently of status.

	CreatedAt        time.Time  `bson:"created_at" json:"createdAt"`
	AssignedAt       *time.Time `bson:"assigned_at,omitempty" json:"assignedAt,omitempty"`
	JourneyStartedAt *time.Time `bson:"journey_started_at,omitempty" json:"journeyStartedAt,omitempty"`
	VisitedAt        *time.Time `bson:"visited_at,omitempty" json:"visitedAt,omitempty"`
	WorkDoneAt       *time.Time `bson:"work_done_at,omitempty" json:"workDoneAt,omitempty"`
	CompletedAt      *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CancelledAt      *time.Time `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`

	BasePrice       float64 `bson:"base_price" json:"basePrice"`
	Discount        float64 `bson:"discount" json:"discount"`
	Tax             float64 `bson:"tax" json:"tax"`
	VisitingFee     float64 `bson:"visiting_fee" json:"visitingFee"`
	FinalAmount     float64 `bson:"final_amount" json:"finalAmount"`
	CancellationFee float64 `bson:"cancellation_fee,omitempty" json:"cancellationFee,omitempty"` // Set only on cancellation.

	CancelReason string      `bson:"cancel_reason,omitempty" json:"cancelReason,omitempty"`
	CancelledBy  CancelActor `bson:"cancelled_by,omitempty" json:"cancelledBy,omitempty"`

	// StageCode is the pending one-time verification code for the next stage
	// transition. Issued at the prior transition, consumed at the next.
	StageCode string `bson:"stage_code,omitempty" json:"-"`
}
