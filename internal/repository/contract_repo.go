package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mesaview-usd/extrapay-api/internal/models"
)

// DefaultPageSize applies when a list filter leaves PageSize unset.
const DefaultPageSize = 20

// ContractFilter narrows contract listings. Predicates combine with AND.
type ContractFilter struct {
	Status   models.ContractStatus
	Search   string
	Page     int
	PageSize int
}

// ContractRepository defines tenant-scoped persistence for contracts. Every
// method takes the owning district id explicitly; rows outside that district
// are indistinguishable from missing rows.
type ContractRepository interface {
	List(ctx context.Context, districtID uint, filter ContractFilter) ([]models.Contract, int64, error)
	GetByID(ctx context.Context, districtID, id uint) (models.Contract, error)
	CreateWithEvent(ctx context.Context, contract *models.Contract, event *models.Event) error
	UpdateStatusWithEvent(ctx context.Context, contract *models.Contract, event *models.Event) error
	CountByStatus(ctx context.Context, districtID uint) (map[models.ContractStatus]int64, error)
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository instantiates a GORM-backed contract repository.
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) List(ctx context.Context, districtID uint, filter ContractFilter) ([]models.Contract, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Contract{}).Where("district_id = ?", districtID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	query = query.Offset((page - 1) * pageSize).Limit(pageSize)

	var contracts []models.Contract
	if err := query.Order("created_at DESC").Find(&contracts).Error; err != nil {
		return nil, 0, err
	}

	return contracts, total, nil
}

func (r *contractRepository) GetByID(ctx context.Context, districtID, id uint) (models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("id = ? AND district_id = ?", id, districtID).
		First(&contract).Error
	if err != nil {
		return models.Contract{}, err
	}

	return contract, nil
}

// CreateWithEvent inserts the contract row and its creation event in a single
// transaction so the audit trail never diverges from the entity state.
func (r *contractRepository) CreateWithEvent(ctx context.Context, contract *models.Contract, event *models.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contract).Error; err != nil {
			return err
		}

		event.EntityID = contract.ID
		return appendEventTx(tx, event)
	})
}

// UpdateStatusWithEvent applies the status projection and appends the audit
// event atomically. The WHERE clause re-checks tenant ownership even though
// callers load the row through GetByID first.
func (r *contractRepository) UpdateStatusWithEvent(ctx context.Context, contract *models.Contract, event *models.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.Contract{}).
			Where("id = ? AND district_id = ?", contract.ID, contract.DistrictID).
			Updates(map[string]interface{}{"status": contract.Status})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return appendEventTx(tx, event)
	})
}

func (r *contractRepository) CountByStatus(ctx context.Context, districtID uint) (map[models.ContractStatus]int64, error) {
	type statusCount struct {
		Status models.ContractStatus
		Total  int64
	}

	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Select("status, COUNT(*) AS total").
		Where("district_id = ?", districtID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ContractStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}
