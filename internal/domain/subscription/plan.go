// Package subscription holds plans, viewer subscriptions and the derived
// entitlement logic built on them.
package subscription

import (
	"fmt"
	"time"

	"kinora/internal/domain/media"
)

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusInactive PlanStatus = "inactive"
)

// Plan is a purchasable subscription tier. An empty allowed-quality set means
// the plan places no restriction on playback quality; it never means "no
// access".
type Plan struct {
	id               uint
	name             string
	slug             string
	price            uint64
	durationDays     int
	allowedQualities []media.Quality
	status           PlanStatus
	createdAt        time.Time
	updatedAt        time.Time
}

func NewPlan(name, slug string, price uint64, durationDays int, allowedQualities []media.Quality) (*Plan, error) {
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if slug == "" {
		return nil, fmt.Errorf("plan slug is required")
	}
	if durationDays <= 0 {
		return nil, fmt.Errorf("plan duration must be positive")
	}
	for _, q := range allowedQualities {
		if !q.IsValid() {
			return nil, fmt.Errorf("invalid allowed quality: %s", q)
		}
	}

	now := time.Now()
	return &Plan{
		name:             name,
		slug:             slug,
		price:            price,
		durationDays:     durationDays,
		allowedQualities: allowedQualities,
		status:           PlanStatusActive,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

func ReconstructPlan(id uint, name, slug string, price uint64, durationDays int,
	allowedQualities []media.Quality, status string, createdAt, updatedAt time.Time) (*Plan, error) {

	if id == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	planStatus := PlanStatus(status)
	if planStatus != PlanStatusActive && planStatus != PlanStatusInactive {
		return nil, fmt.Errorf("invalid plan status: %s", status)
	}

	return &Plan{
		id:               id,
		name:             name,
		slug:             slug,
		price:            price,
		durationDays:     durationDays,
		allowedQualities: allowedQualities,
		status:           planStatus,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}, nil
}

func (p *Plan) ID() uint {
	return p.id
}

func (p *Plan) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("plan ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Plan) Name() string {
	return p.name
}

func (p *Plan) Slug() string {
	return p.slug
}

func (p *Plan) Price() uint64 {
	return p.price
}

func (p *Plan) DurationDays() int {
	return p.durationDays
}

func (p *Plan) AllowedQualities() []media.Quality {
	out := make([]media.Quality, len(p.allowedQualities))
	copy(out, p.allowedQualities)
	return out
}

// PermittedSet returns the quality set this plan grants. An empty
// allowed-quality list yields the unrestricted set.
func (p *Plan) PermittedSet() media.QualitySet {
	return media.NewQualitySet(p.allowedQualities...)
}

func (p *Plan) Status() PlanStatus {
	return p.status
}

func (p *Plan) IsActive() bool {
	return p.status == PlanStatusActive
}

func (p *Plan) Deactivate() {
	p.status = PlanStatusInactive
	p.updatedAt = time.Now()
}

func (p *Plan) Update(name string, price uint64, durationDays int, allowedQualities []media.Quality) error {
	if name == "" {
		return fmt.Errorf("plan name is required")
	}
	if durationDays <= 0 {
		return fmt.Errorf("plan duration must be positive")
	}
	for _, q := range allowedQualities {
		if !q.IsValid() {
			return fmt.Errorf("invalid allowed quality: %s", q)
		}
	}
	p.name = name
	p.price = price
	p.durationDays = durationDays
	p.allowedQualities = allowedQualities
	p.updatedAt = time.Now()
	return nil
}

func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Plan) UpdatedAt() time.Time {
	return p.updatedAt
}
