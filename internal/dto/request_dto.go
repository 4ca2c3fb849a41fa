package dto

import (
	"time"

	"github.com/mesaview-usd/extrapay-api/internal/models"
)

type PayRequestCreateRequest struct {
	ContractID uint    `json:"contract_id" validate:"required"`
	EmployeeID uint    `json:"employee_id" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Hours      float64 `json:"hours" validate:"required,gt=0"`
	WorkDate   string  `json:"work_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

type PayRequestRejectRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=2000"`
}

type PayRequestListRequest struct {
	Status     string `query:"status"`
	ContractID uint   `query:"contract_id"`
	EmployeeID uint   `query:"employee_id"`
	Page       int    `query:"page"`
	PageSize   int    `query:"page_size"`
}

type PayRequestResponse struct {
	ID              uint       `json:"id"`
	DistrictID      uint       `json:"district_id"`
	ContractID      uint       `json:"contract_id"`
	EmployeeID      uint       `json:"employee_id"`
	Amount          float64    `json:"amount"`
	Hours           float64    `json:"hours"`
	WorkDate        time.Time  `json:"work_date"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ArchivedAt      *time.Time `json:"archived_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type PayRequestListResponse struct {
	Requests   []PayRequestResponse `json:"requests"`
	Pagination PaginationMeta       `json:"pagination"`
}

func NewPayRequestResponse(request models.PayRequest) PayRequestResponse {
	return PayRequestResponse{
		ID:              request.ID,
		DistrictID:      request.DistrictID,
		ContractID:      request.ContractID,
		EmployeeID:      request.EmployeeID,
		Amount:          request.Amount,
		Hours:           request.Hours,
		WorkDate:        request.WorkDate,
		Status:          string(request.Status),
		RejectionReason: request.RejectionReason,
		ArchivedAt:      request.ArchivedAt,
		CreatedAt:       request.CreatedAt,
		UpdatedAt:       request.UpdatedAt,
	}
}

func NewPayRequestResponseSlice(requests []models.PayRequest) []PayRequestResponse {
	out := make([]PayRequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, NewPayRequestResponse(request))
	}
	return out
}
