package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/infrastructure/logger"
	"github.com/trackbench/core/internal/ports"
)

// SubscriptionService stores mailing-list addresses. Subscription is
// storage-only; no mail is ever sent.
type SubscriptionService struct {
	repo     ports.SubscriptionRepository
	audit    ports.AuditLog
	validate *validator.Validate
	logger   *logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo ports.SubscriptionRepository, audit ports.AuditLog, logger *logger.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		audit:    audit,
		validate: validator.New(),
		logger:   logger,
	}
}

// Subscribe normalizes and stores an address. The address is trimmed and
// case-folded before storage so duplicates cannot slip in through case or
// whitespace variation; the store's uniqueness constraint is the final
// arbiter.
func (s *SubscriptionService) Subscribe(ctx context.Context, email string) (*entities.EmailSubscription, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(normalized, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidEmail, email)
	}

	sub := &entities.EmailSubscription{
		ID:    uuid.New(),
		Email: normalized,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, entities.ErrEmailAlreadySubscribed) {
			s.recordAudit(ctx, entities.AuditLevelError, "Email subscription rejected as duplicate", map[string]interface{}{
				"email": normalized,
			})
			return nil, err
		}
		return nil, fmt.Errorf("failed to store subscription: %w", err)
	}

	s.logger.Infow("Email subscribed", "email", normalized)
	s.recordAudit(ctx, entities.AuditLevelSuccess, "Email subscription stored", map[string]interface{}{
		"email": normalized,
	})

	return sub, nil
}

func (s *SubscriptionService) recordAudit(ctx context.Context, level entities.AuditLevel, message string, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Append(ctx, entities.AuditEntry{
		Level:   level,
		Message: message,
		Details: details,
	}); err != nil {
		s.logger.Warnw("Failed to record audit entry", "error", err)
	}
}
