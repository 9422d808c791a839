package utils

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// NewPaginationParams normalises a page request. Page is 1-based.
func NewPaginationParams(page, pageSize int) PaginationParams {
	if page <= 0 {
		page = 1
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	offset := (page - 1) * pageSize

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   offset,
	}
}

// Next returns the parameters for the following page.
func (p PaginationParams) Next() PaginationParams {
	return NewPaginationParams(p.Page+1, p.PageSize)
}
