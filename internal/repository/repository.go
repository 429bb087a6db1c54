// Package repository declares the persistence contracts used by the service layer.
// Implementations live in subpackages (postgres) and contain no business rules;
// decisions that must happen under a row lock are passed in as callbacks.
package repository

import "errors"

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("record already exists")
	ErrOutOfStock = errors.New("insufficient stock")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
