package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type TransportMode string

const (
	// ModeCloud targets the public Bot API, oversized files are split.
	ModeCloud TransportMode = "CLOUD"
	// ModeDirect targets a self-hosted Bot API server with a larger ceiling and no splitting.
	ModeDirect TransportMode = "DIRECT"
)

func ToTransportMode(useLocal bool) TransportMode {
	if useLocal {
		return ModeDirect
	}
	return ModeCloud
}

type Outcome string

const (
	PENDING   Outcome = "PENDING"
	SUCCESS   Outcome = "SUCCESS"
	FAILURE   Outcome = "FAILURE"
	SKIPPED   Outcome = "SKIPPED"
	ABANDONED Outcome = "ABANDONED"
)

// DeliveryAttempt is the journey of one file through the pipeline.
// It only lives for the duration of one coordinator call.
type DeliveryAttempt struct {
	ID      uuid.UUID
	Path    string
	Name    string
	Caption string
	Mode    TransportMode
	Size    int64
	Parts   int
	Outcome Outcome
	Reason  error
}

func NewDeliveryAttempt(path, name string, mode TransportMode) DeliveryAttempt {
	return DeliveryAttempt{
		ID:      uuid.New(),
		Path:    path,
		Name:    name,
		Caption: name,
		Mode:    mode,
		Outcome: PENDING,
	}
}

// Split reports whether the attempt went through the multi-part path.
func (a DeliveryAttempt) Split() bool {
	return a.Parts > 1
}

func PartCaption(name string, index, total int) string {
	return fmt.Sprintf("%s (part %d/%d)", name, index, total)
}
