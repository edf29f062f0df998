// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strconv"

	"github.com/dalemusser/quickmatch/internal/app/store/audit"
	"github.com/dalemusser/quickmatch/internal/domain/models"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Meetings controls logging for coordinator events (create, delete, status, evaluate).
	// Values: "all" (store + zap), "db" (store only), "log" (zap only), "off" (disabled)
	Meetings string
}

// Sink persists audit events; *audit.Store is the MongoDB implementation.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to the sink (when one is configured) and to zap.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. sink may be nil, in which case "db"
// output is skipped.
func New(sink Sink, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		sink:   sink,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.MeetingID != "" {
		fields = append(fields, zap.String("meeting_id", event.MeetingID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.SubjectID != "" {
		fields = append(fields, zap.String("subject_id", event.SubjectID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := "all"
	if event.Category == audit.CategoryMeeting && l.config.Meetings != "" {
		setting = l.config.Meetings
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.sink != nil {
		if err := l.sink.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// MeetingCreated logs a new meeting.
func (l *Logger) MeetingCreated(ctx context.Context, actorID string, m models.Meeting) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMeeting,
		EventType: audit.EventMeetingCreated,
		MeetingID: m.ID,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"title":            m.Title,
			"category":         string(m.Category),
			"max_participants": strconv.Itoa(m.MaxParticipants),
		},
	})
}

// MeetingDeleted logs a cascade delete together with what it removed.
func (l *Logger) MeetingDeleted(ctx context.Context, actorID string, m models.Meeting, members int, evaluations int64) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMeeting,
		EventType: audit.EventMeetingDeleted,
		MeetingID: m.ID,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"title":       m.Title,
			"members":     strconv.Itoa(members),
			"evaluations": strconv.FormatInt(evaluations, 10),
		},
	})
}

// StatusChanged logs an organizer status transition.
func (l *Logger) StatusChanged(ctx context.Context, actorID, meetingID string, from, to models.Status) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMeeting,
		EventType: audit.EventMeetingStatusChanged,
		MeetingID: meetingID,
		ActorID:   actorID,
		Success:   true,
		Details: map[string]string{
			"from": string(from),
			"to":   string(to),
		},
	})
}

// MemberEvaluated logs the evaluation that consumed a meeting's gate.
func (l *Logger) MemberEvaluated(ctx context.Context, e models.Evaluation, award int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMeeting,
		EventType: audit.EventMemberEvaluated,
		MeetingID: e.MeetingID,
		ActorID:   e.EvaluatorID,
		SubjectID: e.EvaluatedID,
		Success:   true,
		Details: map[string]string{
			"is_positive": strconv.FormatBool(e.IsPositive),
			"award":       strconv.Itoa(award),
		},
	})
}

// EvaluationRejected logs an evaluation refused by the gate.
func (l *Logger) EvaluationRejected(ctx context.Context, actorID, meetingID, evaluatedID, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryMeeting,
		EventType:     audit.EventEvaluationRejected,
		MeetingID:     meetingID,
		ActorID:       actorID,
		SubjectID:     evaluatedID,
		Success:       false,
		FailureReason: reason,
	})
}
