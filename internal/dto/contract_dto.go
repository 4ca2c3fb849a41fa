package dto

import (
	"time"

	"github.com/mesaview-usd/extrapay-api/internal/models"
)

type ContractCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	StartDate   string  `json:"start_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate     string  `json:"end_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

type ContractStatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

type ContractListRequest struct {
	Status   string `query:"status"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

type ContractResponse struct {
	ID          uint      `json:"id"`
	DistrictID  uint      `json:"district_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      string    `json:"status"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ContractListResponse struct {
	Contracts  []ContractResponse `json:"contracts"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewContractResponse reports the contract's effective status at the
// reference time, so contracts past their end date read as expired.
func NewContractResponse(contract models.Contract, reference time.Time) ContractResponse {
	return ContractResponse{
		ID:          contract.ID,
		DistrictID:  contract.DistrictID,
		Title:       contract.Title,
		Description: contract.Description,
		Amount:      contract.Amount,
		StartDate:   contract.StartDate,
		EndDate:     contract.EndDate,
		Status:      string(contract.EffectiveStatus(reference)),
		CreatedBy:   contract.CreatedBy,
		CreatedAt:   contract.CreatedAt,
		UpdatedAt:   contract.UpdatedAt,
	}
}

func NewContractResponseSlice(contracts []models.Contract, reference time.Time) []ContractResponse {
	out := make([]ContractResponse, 0, len(contracts))
	for _, contract := range contracts {
		out = append(out, NewContractResponse(contract, reference))
	}
	return out
}
