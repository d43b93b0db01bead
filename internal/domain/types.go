package domain

// ID is used across domain entities.
type ID int64

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total,omitempty"`
}

// Offset returns the SQL offset for the page, clamping bad input.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the page size bounded to [1, 200], default 50.
func (p Pagination) Limit() int {
	switch {
	case p.PageSize < 1:
		return 50
	case p.PageSize > 200:
		return 200
	default:
		return p.PageSize
	}
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID ID     `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (r RequestContext) IsAdmin() bool { return r.Role == RoleAdmin }
