// Package paging holds the 1-indexed page arithmetic shared by list queries.
package paging

import "gorm.io/gorm"

// Offset returns the row offset of a 1-indexed page. Pages below 1 are
// treated as page 1.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}

// Scope limits a query to one page. A page past the end yields no rows.
func Scope(page, size int) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Offset(Offset(page, size)).Limit(size)
	}
}
