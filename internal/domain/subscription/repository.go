package subscription

import "context"

type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetByName(ctx context.Context, name string) (*Plan, error)
	Update(ctx context.Context, plan *Plan) error
	Delete(ctx context.Context, id uint) error
	ListActive(ctx context.Context) ([]*Plan, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	// GetActiveByProfileID returns the profile's current entitlement source:
	// the ACTIVE subscription with the latest end date still in the future,
	// or nil when none qualifies.
	GetActiveByProfileID(ctx context.Context, profileID uint) (*Subscription, error)
	ListByProfileID(ctx context.Context, profileID uint) ([]*Subscription, error)
	FindExpired(ctx context.Context) ([]*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
}
