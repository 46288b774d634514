//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"backup-courier/domain"
	"context"
	"reflect"
	"time"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Transport is the remote messaging endpoint.
type Transport interface {
	// SendText posts a plain text message to the chat.
	SendText(ctx context.Context, chatID string, text string) error
	// SendDocument uploads a document and returns the raw HTTP status and body.
	// A non-nil error means the request never completed.
	SendDocument(ctx context.Context, chatID string, doc domain.Document) (int, string, error)
}

// EventSource delivers create and move notifications of a single directory.
type EventSource interface {
	Events() <-chan domain.FsEvent
	Errors() <-chan error
	Close() error
}

type Notifier interface {
	Notify(ctx context.Context, text string)
}

type Uploader interface {
	Upload(ctx context.Context, path string, caption string) bool
}

type Splitter interface {
	Split(path string, chunkSize int64) ([]domain.FilePart, error)
}

type StabilityWaiter interface {
	WaitUntilStable(ctx context.Context, path string) bool
}

type Deduplicator interface {
	ShouldProcess(path string, now time.Time) bool
	Evict(now time.Time) int
	Len() int
}

type Coordinator interface {
	Deliver(ctx context.Context, path string) domain.DeliveryAttempt
}

// DeliveryRecorder receives transfer measurements for metrics.
type DeliveryRecorder interface {
	ObserveUpload(duration time.Duration, bytes int64, ok bool)
}
