package subscription

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// Subscription is one purchase of a plan by a profile. The active entitlement
// is derived at evaluation time: the latest ACTIVE row whose end date is in
// the future.
type Subscription struct {
	id        uint
	profileID uint
	planID    uint
	status    Status
	startDate time.Time
	endDate   time.Time
	createdAt time.Time
	updatedAt time.Time
}

func NewSubscription(profileID, planID uint, durationDays int) (*Subscription, error) {
	if profileID == 0 {
		return nil, fmt.Errorf("subscription profile ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("subscription plan ID is required")
	}
	if durationDays <= 0 {
		return nil, fmt.Errorf("subscription duration must be positive")
	}

	now := time.Now()
	return &Subscription{
		profileID: profileID,
		planID:    planID,
		status:    StatusActive,
		startDate: now,
		endDate:   now.AddDate(0, 0, durationDays),
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructSubscription(id, profileID, planID uint, status string,
	startDate, endDate, createdAt, updatedAt time.Time) (*Subscription, error) {

	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	st := Status(status)
	if st != StatusActive && st != StatusExpired && st != StatusCancelled {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}

	return &Subscription{
		id:        id,
		profileID: profileID,
		planID:    planID,
		status:    st,
		startDate: startDate,
		endDate:   endDate,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (s *Subscription) ID() uint {
	return s.id
}

func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

func (s *Subscription) ProfileID() uint {
	return s.profileID
}

func (s *Subscription) PlanID() uint {
	return s.planID
}

func (s *Subscription) Status() Status {
	return s.status
}

func (s *Subscription) StartDate() time.Time {
	return s.startDate
}

func (s *Subscription) EndDate() time.Time {
	return s.endDate
}

// IsActiveAt reports whether the subscription entitles playback at the given
// instant.
func (s *Subscription) IsActiveAt(now time.Time) bool {
	return s.status == StatusActive && s.endDate.After(now)
}

// Expire marks a lapsed subscription. The worker sweep calls this for ACTIVE
// rows whose end date has passed.
func (s *Subscription) Expire() {
	s.status = StatusExpired
	s.updatedAt = time.Now()
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Subscription) UpdatedAt() time.Time {
	return s.updatedAt
}
