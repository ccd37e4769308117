package helpers

import (
	"net/http"
	"strconv"

	"github.com/Chakshu098/Everhack/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the request query string and
// clamps them to valid ranges. When neither is present it returns the zero
// value, which lists everything. Invalid values fall back to defaults.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	if !q.Has("page") && !q.Has("page_size") {
		return domain.PaginationParams{}
	}
	page := DefaultPage
	if s := q.Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			page = v
		}
	}
	pageSize := DefaultPageSize
	if s := q.Get("page_size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			pageSize = v
			if pageSize > MaxPageSize {
				pageSize = MaxPageSize
			}
		}
	}
	return domain.PaginationParams{Page: page, PageSize: pageSize}
}

// PaginationMeta echoes the page that was served.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	// HasMore is true when the page was full, so another page may exist.
	HasMore bool `json:"has_more"`
}

// NewPaginationMeta builds PaginationMeta for a page that returned n items.
// It returns nil for unpaginated requests.
func NewPaginationMeta(p domain.PaginationParams, n int) *PaginationMeta {
	if p.PageSize <= 0 {
		return nil
	}
	return &PaginationMeta{Page: p.Page, PageSize: p.PageSize, HasMore: n == p.PageSize}
}
