package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mesaview-usd/extrapay-api/internal/models"
)

// PayRequestFilter narrows pay request listings. Predicates combine with AND.
type PayRequestFilter struct {
	Status          models.RequestStatus
	ContractID      *uint
	EmployeeID      *uint
	IncludeArchived bool
	Page            int
	PageSize        int
}

// PayRequestRepository defines tenant-scoped persistence for pay requests.
type PayRequestRepository interface {
	List(ctx context.Context, districtID uint, filter PayRequestFilter) ([]models.PayRequest, int64, error)
	GetByID(ctx context.Context, districtID, id uint) (models.PayRequest, error)
	CreateWithEvent(ctx context.Context, request *models.PayRequest, event *models.Event) error
	UpdateStatusWithEvent(ctx context.Context, request *models.PayRequest, event *models.Event) error
	CountByStatus(ctx context.Context, districtID uint) (map[models.RequestStatus]int64, error)
	SumAmountByStatus(ctx context.Context, districtID uint, status models.RequestStatus) (float64, error)
	ArchiveTerminalBefore(ctx context.Context, districtID uint, cutoff, stamp time.Time) (scanned, archived int64, err error)
}

type payRequestRepository struct {
	db *gorm.DB
}

// NewPayRequestRepository instantiates a GORM-backed pay request repository.
func NewPayRequestRepository(db *gorm.DB) PayRequestRepository {
	return &payRequestRepository{db: db}
}

func (r *payRequestRepository) List(ctx context.Context, districtID uint, filter PayRequestFilter) ([]models.PayRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PayRequest{}).Where("district_id = ?", districtID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}

	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}

	if !filter.IncludeArchived {
		query = query.Where("archived_at IS NULL")
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

	var requests []models.PayRequest
	if err := query.Order("work_date DESC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *payRequestRepository) GetByID(ctx context.Context, districtID, id uint) (models.PayRequest, error) {
	var request models.PayRequest
	err := r.db.WithContext(ctx).
		Where("id = ? AND district_id = ?", id, districtID).
		First(&request).Error
	if err != nil {
		return models.PayRequest{}, err
	}

	return request, nil
}

// CreateWithEvent inserts the request row and its creation event in one
// transaction.
func (r *payRequestRepository) CreateWithEvent(ctx context.Context, request *models.PayRequest, event *models.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return err
		}

		event.EntityID = request.ID
		return appendEventTx(tx, event)
	})
}

// UpdateStatusWithEvent applies the status projection and appends the audit
// event atomically; both writes commit or neither does.
func (r *payRequestRepository) UpdateStatusWithEvent(ctx context.Context, request *models.PayRequest, event *models.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.PayRequest{}).
			Where("id = ? AND district_id = ?", request.ID, request.DistrictID).
			Updates(map[string]interface{}{
				"status":           request.Status,
				"rejection_reason": request.RejectionReason,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return appendEventTx(tx, event)
	})
}

func (r *payRequestRepository) CountByStatus(ctx context.Context, districtID uint) (map[models.RequestStatus]int64, error) {
	type statusCount struct {
		Status models.RequestStatus
		Total  int64
	}

	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.PayRequest{}).
		Select("status, COUNT(*) AS total").
		Where("district_id = ?", districtID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.RequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}

func (r *payRequestRepository) SumAmountByStatus(ctx context.Context, districtID uint, status models.RequestStatus) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.PayRequest{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("district_id = ? AND status = ?", districtID, status).
		Scan(&total).Error
	return total, err
}

// ArchiveTerminalBefore stamps archived_at on terminal requests whose work
// date precedes the cutoff. Audit events are never touched.
func (r *payRequestRepository) ArchiveTerminalBefore(ctx context.Context, districtID uint, cutoff, stamp time.Time) (int64, int64, error) {
	terminal := []models.RequestStatus{models.RequestStatusRejected, models.RequestStatusPaid}

	var scanned int64
	err := r.db.WithContext(ctx).
		Model(&models.PayRequest{}).
		Where("district_id = ? AND status IN ?", districtID, terminal).
		Count(&scanned).Error
	if err != nil {
		return 0, 0, err
	}

	result := r.db.WithContext(ctx).
		Model(&models.PayRequest{}).
		Where("district_id = ? AND status IN ? AND work_date < ? AND archived_at IS NULL", districtID, terminal, cutoff).
		Update("archived_at", stamp)
	if result.Error != nil {
		return scanned, 0, result.Error
	}

	return scanned, result.RowsAffected, nil
}
