package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/factoryboard/internal/domain/models"
	client "github.com/mamadbah2/factoryboard/pkg/clients/whatsapp"
)

// ErrNotConfigured is returned when no recipient is available for a digest.
var ErrNotConfigured = errors.New("digest notifier not configured")

// SummaryProvider renders the digest text.
type SummaryProvider interface {
	Summary(ctx context.Context) (string, error)
}

// DigestService pushes metric digests over the WhatsApp Cloud API.
type DigestService struct {
	client    client.Client
	summaries SummaryProvider
	defaultTo string
	logger    *zap.Logger
}

// NewDigestService wires a new service instance.
func NewDigestService(c client.Client, summaries SummaryProvider, defaultTo string, logger *zap.Logger) *DigestService {
	svc := &DigestService{
		client:    c,
		summaries: summaries,
		defaultTo: defaultTo,
		logger:    logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// SendDigest sends req.Message, or the current summary when it is empty, to
// req.To or the configured default recipient.
func (s *DigestService) SendDigest(ctx context.Context, req models.DigestRequest) error {
	if s.client == nil {
		return ErrNotConfigured
	}

	to := req.To
	if to == "" {
		to = s.defaultTo
	}
	if to == "" {
		return ErrNotConfigured
	}

	body := req.Message
	if body == "" {
		summary, err := s.summaries.Summary(ctx)
		if err != nil {
			return fmt.Errorf("build digest: %w", err)
		}
		body = summary
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   to,
		Body: body,
	})
	if err != nil {
		return err
	}

	messageID := ""
	if resp != nil && len(resp.Messages) > 0 {
		messageID = resp.Messages[0].ID
	}
	s.logger.Info("digest sent", zap.String("to", to), zap.String("message_id", messageID))
	return nil
}
