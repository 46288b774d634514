package e2e

import (
	"backup-courier/domain"
	"backup-courier/domain/event"
	"context"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testDeliverySuite struct {
	BaseCourierSuite
}

func TestDeliverySuite(t *testing.T) {
	suite.Run(t, &testDeliverySuite{})
}

func (s *testDeliverySuite) archive(size int) string {
	path := filepath.Join(s.T().TempDir(), "e2e-"+uuid.NewString()+".zip")
	data := make([]byte, size)
	_, err := rand.Read(data)
	s.Require().NoError(err)
	s.Require().NoError(os.WriteFile(path, data, 0o644))
	return path
}

func (s *testDeliverySuite) TestSingleDocument() {
	coordinator, _ := s.Coordinator(domain.ModeCloud, 49)
	path := s.archive(64 * domain.KB)

	var attempt domain.DeliveryAttempt
	s.Step("Deliver a small archive in one message", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		attempt = coordinator.Deliver(ctx, path)
	})

	s.Step("Archive is delivered and removed", func() {
		s.Require().Equal(domain.SUCCESS, attempt.Outcome, "reason: %v", attempt.Reason)
		s.Require().Equal(1, attempt.Parts)
		_, err := os.Stat(path)
		s.Require().True(os.IsNotExist(err))
	})
}

func (s *testDeliverySuite) TestSplitDocument() {
	coordinator, telemetry := s.Coordinator(domain.ModeCloud, 1)
	path := s.archive(2*domain.MB + 512*domain.KB)

	var attempt domain.DeliveryAttempt
	s.Step("Deliver an archive above the cloud ceiling", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		attempt = coordinator.Deliver(ctx, path)
	})

	s.Step("Every part is uploaded in order then removed", func() {
		s.Require().Equal(domain.SUCCESS, attempt.Outcome, "reason: %v", attempt.Reason)
		s.Require().Equal(3, attempt.Parts)

		index := 0
		for len(telemetry) > 0 {
			evt := <-telemetry
			if evt.Type != event.PartUploadedType {
				continue
			}
			index++
			s.Require().Equal(index, evt.Payload.(event.PartUploaded).Index)
		}
		s.Require().Equal(3, index)

		matches, err := filepath.Glob(path + "*")
		s.Require().NoError(err)
		s.Require().Empty(matches)
	})
}
