package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackbench/core/internal/domain/entities"
	"github.com/trackbench/core/internal/infrastructure/logger"
)

type fakeSubscriptionRepo struct {
	stored []*entities.EmailSubscription
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, sub *entities.EmailSubscription) error {
	for _, existing := range f.stored {
		if existing.Email == sub.Email {
			return entities.ErrEmailAlreadySubscribed
		}
	}
	f.stored = append(f.stored, sub)
	return nil
}

func (f *fakeSubscriptionRepo) List(ctx context.Context) ([]*entities.EmailSubscription, error) {
	return f.stored, nil
}

func TestSubscribeNormalizesAddress(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := NewSubscriptionService(repo, nil, logger.NewNop())

	sub, err := svc.Subscribe(context.Background(), "  User@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", sub.Email)
}

func TestSubscribeRejectsInvalidAddress(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := NewSubscriptionService(repo, nil, logger.NewNop())

	for _, email := range []string{"", "   ", "not-an-email", "missing@tld@twice"} {
		_, err := svc.Subscribe(context.Background(), email)
		assert.ErrorIs(t, err, entities.ErrInvalidEmail, "email %q", email)
	}
	assert.Empty(t, repo.stored)
}

func TestSubscribeDuplicateAfterNormalization(t *testing.T) {
	repo := &fakeSubscriptionRepo{}
	svc := NewSubscriptionService(repo, nil, logger.NewNop())

	_, err := svc.Subscribe(context.Background(), "user@example.com")
	require.NoError(t, err)

	// Same address through different casing collides with the stored form.
	_, err = svc.Subscribe(context.Background(), "USER@example.com")
	assert.ErrorIs(t, err, entities.ErrEmailAlreadySubscribed)
	assert.Len(t, repo.stored, 1)
}
