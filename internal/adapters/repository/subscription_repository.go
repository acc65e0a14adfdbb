package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/ports"
)

// SubscriptionRepositoryImpl implements the SubscriptionRepository interface
type SubscriptionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sqlx.DB) ports.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *entities.EmailSubscription) error {
	query := `
		INSERT INTO email_subscriptions (id, email)
		VALUES ($1, $2)
		RETURNING subscribed_at`

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query, sub.ID, sub.Email).Scan(&sub.SubscribedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return entities.ErrEmailAlreadySubscribed
		}
		return fmt.Errorf("create subscription: %w: %v", entities.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *SubscriptionRepositoryImpl) List(ctx context.Context) ([]*entities.EmailSubscription, error) {
	query := `
		SELECT id, email, subscribed_at
		FROM email_subscriptions
		ORDER BY subscribed_at DESC`

	var subs []*entities.EmailSubscription
	err := r.db.SelectContext(ctx, &subs, query)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w: %v", entities.ErrStoreUnavailable, err)
	}

	return subs, nil
}
