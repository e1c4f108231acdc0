// internal/domain/models/pagination.go
package models

// Pagination is the paging envelope returned by every list endpoint.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// DefaultSiteName is shown in the header when nothing else is configured.
const DefaultSiteName = "VisitDesk"
