package dto

import "time"

type StorageEstimate struct {
	ContractRows   int64 `json:"contract_rows"`
	RequestRows    int64 `json:"request_rows"`
	EventRows      int64 `json:"event_rows"`
	EstimatedBytes int64 `json:"estimated_bytes"`
}

type DistrictDashboardResponse struct {
	DistrictID          uint             `json:"district_id"`
	Employees           int64            `json:"employees"`
	ContractsByStatus   map[string]int64 `json:"contracts_by_status"`
	RequestsByStatus    map[string]int64 `json:"requests_by_status"`
	TotalApprovedAmount float64          `json:"total_approved_amount"`
	TotalPaidAmount     float64          `json:"total_paid_amount"`
	Storage             StorageEstimate  `json:"storage"`
	GeneratedAt         time.Time        `json:"generated_at"`
	CacheHit            bool             `json:"cache_hit"`
}

type ArchiveRunRequest struct {
	RetentionDays int `json:"retention_days" validate:"omitempty,gte=30"`
}

type ArchiveRunResponse struct {
	DistrictID    uint      `json:"district_id"`
	RetentionDays int       `json:"retention_days"`
	Cutoff        time.Time `json:"cutoff"`
	Scanned       int64     `json:"scanned"`
	Archived      int64     `json:"archived"`
	RanAt         time.Time `json:"ran_at"`
}
