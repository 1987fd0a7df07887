package subscription

import (
	"context"

	"github.com/ignite/newsletter/internal/domain"
)

// Service implements subscription business logic. It is safe for concurrent use.
type Service struct {
	repo Repository
}

// NewService creates a subscription service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Subscribe validates the form and records the subscriber. Exactly one
// insert is attempted for a valid form and none for an invalid one.
func (s *Service) Subscribe(ctx context.Context, form domain.SubscriptionForm) (*domain.Subscription, error) {
	ns, err := domain.ParseNewSubscriber(form)
	if err != nil {
		return nil, err
	}
	return s.repo.Insert(ctx, ns)
}
