package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/feedback-api/internal/contacts"
	"github.com/wolfman30/feedback-api/internal/observability/metrics"
	"github.com/wolfman30/feedback-api/internal/phone"
	"github.com/wolfman30/feedback-api/pkg/logging"
)

const defaultVerifyTimeout = 10 * time.Second

var tracer = otel.Tracer("feedback.internal.messages")

// Verifier checks a human-presence challenge token.
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

// ServiceConfig wires the submission pipeline.
type ServiceConfig struct {
	Store Store
	// Topics overrides Store for topic reads, typically with a TopicCache.
	Topics        TopicSource
	Verifier      Verifier
	Resolver      *contacts.Resolver
	Metrics       *metrics.SubmissionMetrics
	Logger        *logging.Logger
	VerifyTimeout time.Duration
}

// Service validates, verifies and persists submitted messages.
type Service struct {
	store         Store
	topics        TopicSource
	verifier      Verifier
	resolver      *contacts.Resolver
	metrics       *metrics.SubmissionMetrics
	logger        *logging.Logger
	verifyTimeout time.Duration
	now           func() time.Time
}

// NewService creates a Service. Store and Verifier are required.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Store == nil {
		panic("messages: store is required")
	}
	if cfg.Verifier == nil {
		panic("messages: verifier is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Topics == nil {
		cfg.Topics = cfg.Store
	}
	if cfg.Resolver == nil {
		cfg.Resolver = contacts.NewResolver(cfg.Logger)
	}
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = defaultVerifyTimeout
	}
	return &Service{
		store:         cfg.Store,
		topics:        cfg.Topics,
		verifier:      cfg.Verifier,
		resolver:      cfg.Resolver,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		verifyTimeout: cfg.VerifyTimeout,
		now:           time.Now,
	}
}

// Submit runs the submission pipeline: validate, verify the challenge token,
// check the topic, then resolve the contact and insert the message in one
// transaction. The stored message is re-read and returned.
func (s *Service) Submit(ctx context.Context, req *CreateMessageRequest) (msg *Message, err error) {
	ctx, span := tracer.Start(ctx, "messages.submit")
	defer span.End()

	start := s.now()
	defer func() {
		outcome := outcomeFor(err)
		s.metrics.ObserveSubmission(outcome, s.now().Sub(start).Seconds())
		span.SetAttributes(attribute.String("messages.outcome", outcome))
		if outcome == metrics.OutcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, "submit failed")
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("messages.topic_id", req.TopicID))

	if !s.verify(ctx, req.RecaptchaToken) {
		return nil, ErrCaptchaFailed
	}

	topic, err := s.topics.FindTopic(ctx, req.TopicID)
	if err != nil {
		if errors.Is(err, ErrTopicNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("messages: find topic: %w", err)
	}

	email := NormalizeEmail(req.Email)
	phoneKey := phone.Normalize(req.Phone)
	text := strings.TrimSpace(req.Text)

	var id int64
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		contact, err := s.resolver.Resolve(ctx, tx.Contacts(), req.Name, email, phoneKey)
		if err != nil {
			return err
		}
		id, err = tx.InsertMessage(ctx, NewMessage{
			ContactID: contact.ID,
			TopicID:   topic.ID,
			Text:      text,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrTopicNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("messages: save: %w", err)
	}

	msg, err = s.store.GetMessage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("messages: reload %d: %w", id, err)
	}
	span.SetAttributes(attribute.Int64("messages.id", msg.ID))
	s.logger.Info("message submitted", "message_id", msg.ID, "contact_id", msg.Contact.ID, "topic_id", msg.Topic.ID)
	return msg, nil
}

func (s *Service) verify(ctx context.Context, token string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()

	passed := s.verifier.Verify(ctx, token)
	s.metrics.ObserveVerification(passed)
	return passed
}

// GetMessage returns message id with its contact and topic.
func (s *Service) GetMessage(ctx context.Context, id int64) (*Message, error) {
	msg, err := s.store.GetMessage(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("messages: get %d: %w", id, err)
	}
	return msg, nil
}

// ListTopics returns all topics ordered by id.
func (s *Service) ListTopics(ctx context.Context) ([]Topic, error) {
	topics, err := s.topics.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("messages: list topics: %w", err)
	}
	return topics, nil
}

func outcomeFor(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeCreated
	case errors.As(err, &verr):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrCaptchaFailed):
		return metrics.OutcomeCaptchaFailed
	case errors.Is(err, ErrTopicNotFound):
		return metrics.OutcomeTopicNotFound
	default:
		return metrics.OutcomeError
	}
}
