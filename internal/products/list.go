package products

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	VendorID  *uuid.UUID `json:"vendor_id,omitempty"`
	Category  string     `json:"category,omitempty"`
	Published *bool      `json:"published,omitempty"`
	Query     string     `json:"q,omitempty"`
}

// ListInput captures the inputs needed to paginate and filter products.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// criteria is the fully-built, typed query restriction for a listing.
// Each clause is explicit; there is no ad-hoc map assembly.
type criteria struct {
	clauses []clause
}

type clause struct {
	expr string
	args []any
}

// buildCriteria translates filters into typed SQL clauses.
func buildCriteria(filters ListFilters) criteria {
	var c criteria
	if filters.VendorID != nil {
		c.clauses = append(c.clauses, clause{expr: "vendor_id = ?", args: []any{*filters.VendorID}})
	}
	if category := strings.TrimSpace(filters.Category); category != "" {
		c.clauses = append(c.clauses, clause{expr: "category = ?", args: []any{category}})
	}
	if filters.Published != nil {
		c.clauses = append(c.clauses, clause{expr: "published = ?", args: []any{*filters.Published}})
	}
	if query := strings.TrimSpace(filters.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		c.clauses = append(c.clauses, clause{expr: "LOWER(name) LIKE ?", args: []any{like}})
	}
	return c
}

func (c criteria) apply(db *gorm.DB) *gorm.DB {
	for _, cl := range c.clauses {
		db = db.Where(cl.expr, cl.args...)
	}
	return db
}
