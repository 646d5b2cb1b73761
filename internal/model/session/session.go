package session

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/advisor-bot/internal/entity/conversation"
	"max.ks1230/advisor-bot/internal/entity/finance"
	"max.ks1230/advisor-bot/internal/logger"
	"max.ks1230/advisor-bot/internal/model/plan"
)

const apologyMessage = "Lo siento, ha ocurrido un error técnico. Por favor, inténtelo de nuevo."

// ErrInvalidState rejects a turn submitted after the session completed
// or while a previous turn is still in flight. Nothing is mutated and
// no external call is made.
var ErrInvalidState = errors.New("session cannot accept a turn right now")

type dialogMachine interface {
	Open(rec *finance.Record) string
	Advance(ctx context.Context, rec *finance.Record, text string) (string, error)
}

// Responder is the external capability that turns a directive into the
// advisor's prose. Implementations return the apology text themselves
// on internal failure where they can; the controller falls back to the
// same apology if the call errors outright.
type Responder interface {
	Respond(ctx context.Context, history []conversation.Turn, directive, persona string) (string, error)
}

// PlanSink receives the final plan of a completed session. Exported so
// wiring code can pass a nil sink when export is not configured.
type PlanSink interface {
	PublishPlan(ctx context.Context, export plan.Export) error
}

type config interface {
	Persona() string
}

// Service sequences one advisory session: one record, one transcript,
// one turn at a time. It owns no business rules; those live in the
// dialog machine.
type Service struct {
	id        int64
	machine   dialogMachine
	responder Responder
	sink      PlanSink
	persona   string

	rec  *finance.Record
	log  conversation.Log
	busy bool
}

// New creates a session at the introduction step. sink may be nil when
// plan export is not wired.
func New(id int64, machine dialogMachine, responder Responder, sink PlanSink, cfg config) *Service {
	return &Service{
		id:        id,
		machine:   machine,
		responder: responder,
		sink:      sink,
		persona:   cfg.Persona(),
		rec:       finance.NewRecord(),
	}
}

// Start produces the advisor's opening message and arms the income
// question. Valid exactly once, before any user turn.
func (s *Service) Start(ctx context.Context) (string, error) {
	if s.busy || s.rec.Step != finance.StepIntroduction {
		return "", ErrInvalidState
	}
	s.busy = true
	defer func() { s.busy = false }()

	directive := s.machine.Open(s.rec)
	reply := s.respond(ctx, nil, directive)
	s.log.Append(conversation.Advisor, reply)
	return reply, nil
}

// SubmitUserTurn runs one full turn: extraction and transition first,
// then response generation. The record is already final by the time the
// responder is called, so a responder failure only degrades phrasing.
func (s *Service) SubmitUserTurn(ctx context.Context, text string) (reply string, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "submitUserTurn")
	defer span.Finish()

	start := time.Now()
	reply, err = s.submit(ctx, text)
	observeTurn(time.Since(start), err != nil)
	if err != nil {
		ext.Error.Set(span, true)
	}
	return reply, err
}

func (s *Service) submit(ctx context.Context, text string) (string, error) {
	if s.busy || s.rec.Step == finance.StepCompleted {
		return "", ErrInvalidState
	}
	s.busy = true
	defer func() { s.busy = false }()

	history := s.log.Turns()

	directive, err := s.machine.Advance(ctx, s.rec, text)
	if err != nil {
		return "", errors.Wrap(err, "submit turn")
	}

	s.log.Append(conversation.User, text)
	reply := s.respond(ctx, history, directive)
	s.log.Append(conversation.Advisor, reply)

	if s.rec.Step == finance.StepCompleted {
		s.publishPlan(ctx)
	}
	return reply, nil
}

func (s *Service) respond(ctx context.Context, history []conversation.Turn, directive string) string {
	reply, err := s.responder.Respond(ctx, history, directive, s.persona)
	if err != nil || reply == "" {
		logger.Warn("responder failed, degrading to apology",
			zap.Int64("session", s.id), zap.Error(err))
		return apologyMessage
	}
	return reply
}

// publishPlan is best effort; a sink failure never fails the turn.
func (s *Service) publishPlan(ctx context.Context) {
	if s.sink == nil {
		return
	}
	export := plan.NewExport(s.id, s.rec.Clone())
	if err := s.sink.PublishPlan(ctx, export); err != nil {
		logger.Error("failed to publish completed plan",
			zap.Int64("session", s.id), zap.Error(err))
	}
}

// Snapshot hands presentation a read-only view of the session.
func (s *Service) Snapshot() (finance.Record, []conversation.Turn) {
	return s.rec.Clone(), s.log.Turns()
}

func (s *Service) Completed() bool {
	return s.rec.Step == finance.StepCompleted
}
