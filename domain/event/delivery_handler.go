package event

import (
	"backup-courier/errors"
	"log/slog"
)

// DeliveryHandler counts delivery outcomes and writes one audit line per terminal attempt.
type DeliveryHandler struct {
	log     *slog.Logger
	counter *Counter
}

func NewDeliveryHandler(log *slog.Logger, counter *Counter) *DeliveryHandler {
	return &DeliveryHandler{log: log, counter: counter}
}

func (h *DeliveryHandler) Handle(event Event) {
	switch event.Type {
	case FileDetectedType:
		payload, ok := event.Payload.(FileDetected)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(FileDetectedType)
		h.counter.Add(bytesDetected, uint64(payload.Size))
	case PartUploadedType:
		if _, ok := event.Payload.(PartUploaded); !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(PartUploadedType)
	case DeliverySucceededType, DeliveryFailedType, DeliveryAbandonedType:
		payload, ok := event.Payload.(DeliveryFinished)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter.Increment(event.Type)
		if event.Type == DeliverySucceededType {
			h.counter.Add(bytesDelivered, uint64(payload.Attempt.Size))
		}
		attrs := []any{
			"attempt_id", payload.Attempt.ID,
			"name", payload.Attempt.Name,
			"outcome", payload.Attempt.Outcome,
			"parts", payload.Attempt.Parts,
			"duration", payload.Duration,
		}
		if payload.Attempt.Reason != nil {
			attrs = append(attrs, "reason", payload.Attempt.Reason)
		}
		h.log.Info("delivery finished", attrs...)
	}
}

// Byte totals are tracked in the same counter under synthetic types.
const (
	bytesDetected  Type = "BYTES_DETECTED"
	bytesDelivered Type = "BYTES_DELIVERED"
)

func (c *Counter) BytesDetected() uint64 {
	return c.Get(bytesDetected)
}

func (c *Counter) BytesDelivered() uint64 {
	return c.Get(bytesDelivered)
}
