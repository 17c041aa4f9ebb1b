package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/evalio/evalio-go-api/internal/models"
)

// GradingEvent is published whenever a submission changes grading state.
// Downstream consumers (notification fanout, analytics) subscribe to it.
type GradingEvent struct {
	SubmissionID    uint      `json:"submission_id"`
	EvaluatorID     uint      `json:"evaluator_id"`
	StudentUsername string    `json:"student_username"`
	Status          string    `json:"status"`
	Grade           *int      `json:"grade,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// EventPublisher emits grading lifecycle events. A nil NATS connection turns
// every publish into a no-op so the grading path never depends on the broker.
type EventPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewEventPublisher constructs a publisher on the given subject.
func NewEventPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) *EventPublisher {
	if subject == "" {
		subject = "evalio.grading.events"
	}
	return &EventPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

// PublishGrading emits one event. Failures are logged and swallowed; event
// delivery is best effort and must never fail a grading operation.
func (p *EventPublisher) PublishGrading(submission models.Submission) {
	if p == nil || p.conn == nil {
		return
	}

	event := GradingEvent{
		SubmissionID:    submission.ID,
		EvaluatorID:     submission.EvaluatorID,
		StudentUsername: submission.StudentUsername,
		Status:          submission.Status,
		Grade:           submission.CurrentGrade(),
		OccurredAt:      time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Msg("marshal grading event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("publish grading event")
	}
}
