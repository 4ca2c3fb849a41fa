package models

import "time"

// ContractStatus is the closed set of states an extra-pay contract can hold.
type ContractStatus string

// Contract status values.
const (
	ContractStatusActive   ContractStatus = "active"
	ContractStatusInactive ContractStatus = "inactive"
	ContractStatusExpired  ContractStatus = "expired"
)

// Valid reports whether the value is a member of the contract status enum.
func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusActive, ContractStatusInactive, ContractStatusExpired:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether an administrator may move a contract from
// the receiver status to next. Expiry is derived from the end date, never
// requested directly, so it is not a legal target here.
func (s ContractStatus) CanTransitionTo(next ContractStatus) bool {
	switch s {
	case ContractStatusActive:
		return next == ContractStatusInactive
	case ContractStatusInactive:
		return next == ContractStatusActive
	default:
		return false
	}
}

// Contract represents a recurring extra-pay authorization owned by a district.
type Contract struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	DistrictID  uint           `gorm:"index;not null" json:"district_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Amount      float64        `gorm:"not null" json:"amount"`
	StartDate   time.Time      `gorm:"not null" json:"start_date"`
	EndDate     time.Time      `gorm:"not null" json:"end_date"`
	Status      ContractStatus `gorm:"size:32;not null;default:active" json:"status"`
	CreatedBy   uint           `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Requests    []PayRequest   `gorm:"foreignKey:ContractID" json:"-"`
}

// EffectiveStatus returns the status the contract holds at the reference
// time. An active contract whose end date has passed reads as expired.
func (c Contract) EffectiveStatus(reference time.Time) ContractStatus {
	if c.Status == ContractStatusActive && reference.After(c.EndDate) {
		return ContractStatusExpired
	}
	return c.Status
}
