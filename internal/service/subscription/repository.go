package subscription

import (
	"context"

	"github.com/ignite/newsletter/internal/domain"
)

// Repository defines the data access contract for subscriptions.
type Repository interface {
	// Insert records one subscriber with a server-generated id and UTC
	// timestamp in a single statement. Failures are *StorageError.
	Insert(ctx context.Context, s domain.NewSubscriber) (*domain.Subscription, error)
}
