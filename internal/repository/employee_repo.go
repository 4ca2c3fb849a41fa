package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mesaview-usd/extrapay-api/internal/models"
)

// EmployeeRepository exposes the employee reads the dashboard needs.
type EmployeeRepository interface {
	Count(ctx context.Context, districtID uint) (int64, error)
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository constructs the employee repository.
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Count(ctx context.Context, districtID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("district_id = ?", districtID).
		Count(&count).Error
	return count, err
}
