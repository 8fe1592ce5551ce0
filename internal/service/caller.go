package service

import (
	"shopmall-api/internal/model"

	"github.com/google/uuid"
)

// Caller is the authenticated identity a request acts as
type Caller struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  model.Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

func (c Caller) auditID() string {
	if c.ID == uuid.Nil {
		return ""
	}
	return c.ID.String()
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Pagination is offset based; page numbers start at 1
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination replaces non-positive values with the defaults
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages is the number of pages needed to show total records
func (p Pagination) Pages(total int64) int {
	if p.Limit < 1 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
