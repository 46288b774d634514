package event

import (
	"backup-courier/domain"
	"time"

	"github.com/google/uuid"
)

const (
	FileDetectedType      Type = "FILE_DETECTED"
	PartUploadedType      Type = "PART_UPLOADED"
	DeliverySucceededType Type = "DELIVERY_SUCCEEDED"
	DeliveryFailedType    Type = "DELIVERY_FAILED"
	DeliveryAbandonedType Type = "DELIVERY_ABANDONED"
)

type FileDetected struct {
	AttemptID uuid.UUID
	Name      string
	Size      int64
	Mode      domain.TransportMode
}

type PartUploaded struct {
	AttemptID uuid.UUID
	Index     int
	Total     int
	Length    int64
}

// DeliveryFinished is the payload of the three terminal delivery types.
type DeliveryFinished struct {
	Attempt  domain.DeliveryAttempt
	Duration time.Duration
}

// ToDeliveryEvent maps a finished attempt to its terminal telemetry event.
// Pending and skipped attempts produce no event.
func ToDeliveryEvent(attempt domain.DeliveryAttempt, duration time.Duration) (Event, bool) {
	var t Type
	switch attempt.Outcome {
	case domain.SUCCESS:
		t = DeliverySucceededType
	case domain.FAILURE:
		t = DeliveryFailedType
	case domain.ABANDONED:
		t = DeliveryAbandonedType
	default:
		return Event{}, false
	}
	return New(t, DeliveryFinished{Attempt: attempt, Duration: duration}), true
}
