package models

import "time"

// RequestStatus is the closed set of states a pay request moves through.
type RequestStatus string

// Pay request status values.
const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
	RequestStatusPaid     RequestStatus = "paid"
)

// Valid reports whether the value is a member of the request status enum.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusPaid:
		return true
	default:
		return false
	}
}

// CanTransitionTo enforces the request lifecycle: pending may be approved or
// rejected, approved may be paid, and nothing leaves a terminal state.
// Self-transitions are invalid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case RequestStatusPending:
		return next == RequestStatusApproved || next == RequestStatusRejected
	case RequestStatusApproved:
		return next == RequestStatusPaid
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusRejected || s == RequestStatusPaid
}

// PayRequest is a single claim for payment against a contract.
type PayRequest struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	DistrictID      uint          `gorm:"index;not null" json:"district_id"`
	ContractID      uint          `gorm:"index;not null" json:"contract_id"`
	EmployeeID      uint          `gorm:"index;not null" json:"employee_id"`
	Amount          float64       `gorm:"not null" json:"amount"`
	Hours           float64       `json:"hours"`
	WorkDate        time.Time     `gorm:"not null" json:"work_date"`
	Status          RequestStatus `gorm:"size:32;not null;default:pending" json:"status"`
	RejectionReason string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	ArchivedAt      *time.Time    `gorm:"index" json:"archived_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
