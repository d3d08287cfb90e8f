package services

import (
	"context"
	"time"

	"clinicdesk/internal/events"
	"clinicdesk/internal/logger"
	. "clinicdesk/internal/models"

	"github.com/google/uuid"
)

const ReadinessChannel = "readiness"

// ReadinessNotificationService pushes freshly computed readiness to the
// actor's open websocket connections by way of the event bus.
type ReadinessNotificationService struct {
	eventBus events.Publisher
	log      logger.Logger
}

func NewReadinessNotificationService(
	eventBus events.Publisher,
) *ReadinessNotificationService {
	return &ReadinessNotificationService{
		eventBus: eventBus,
		log:      logger.New("ReadinessNotificationService"),
	}
}

func (s *ReadinessNotificationService) ReadinessChanged(
	ctx context.Context,
	actorID string,
	status ReadinessStatus,
) {
	log := s.log.Function("ReadinessChanged")

	if s.eventBus == nil || actorID == "" {
		return
	}

	event := events.Event{
		ID:      uuid.New().String(),
		Type:    "readiness",
		Channel: ReadinessChannel,
		Action:  "updated",
		UserID:  actorID,
		Data: map[string]any{
			"profileComplete": status.ProfileComplete,
			"clinicComplete":  status.ClinicComplete,
			"doctorComplete":  status.DoctorComplete,
			"regionComplete":  status.RegionComplete,
			"allComplete":     status.AllComplete,
			"lastChecked":     status.LastChecked,
		},
		Timestamp: time.Now(),
	}

	if err := s.eventBus.Publish(ReadinessChannel, event); err != nil {
		log.Warn("failed to publish readiness update", "actorID", actorID, "error", err)
	}
}
