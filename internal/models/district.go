package models

import "time"

// District is the tenant boundary: every contract, request and event belongs
// to exactly one district.
type District struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Code      string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Employee represents a staff member who can claim extra pay.
type Employee struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DistrictID uint      `gorm:"index;not null" json:"district_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Position   string    `gorm:"size:128" json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
