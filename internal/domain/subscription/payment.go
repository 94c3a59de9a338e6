package subscription

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment records the charge taken when a plan is purchased. Gateway
// integration is out of scope; purchases settle immediately.
type Payment struct {
	id             uint
	profileID      uint
	subscriptionID uint
	amount         uint64
	status         PaymentStatus
	method         string
	createdAt      time.Time
}

func NewPayment(profileID, subscriptionID uint, amount uint64, method string) (*Payment, error) {
	if profileID == 0 {
		return nil, fmt.Errorf("payment profile ID is required")
	}
	if subscriptionID == 0 {
		return nil, fmt.Errorf("payment subscription ID is required")
	}
	if method == "" {
		return nil, fmt.Errorf("payment method is required")
	}

	return &Payment{
		profileID:      profileID,
		subscriptionID: subscriptionID,
		amount:         amount,
		status:         PaymentCompleted,
		method:         method,
		createdAt:      time.Now(),
	}, nil
}

func (p *Payment) ID() uint              { return p.id }
func (p *Payment) ProfileID() uint       { return p.profileID }
func (p *Payment) SubscriptionID() uint  { return p.subscriptionID }
func (p *Payment) Amount() uint64        { return p.amount }
func (p *Payment) Status() PaymentStatus { return p.status }
func (p *Payment) Method() string        { return p.method }
func (p *Payment) CreatedAt() time.Time  { return p.createdAt }

func (p *Payment) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("payment ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("payment ID cannot be zero")
	}
	p.id = id
	return nil
}
