// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a stable code, a human message and optional field errors.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Pagination provides cursor-based pagination info.
type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// ListResponse is a page of items.
type ListResponse[T any] struct {
	Data       []T         `json:"data"`
	Pagination *Pagination `json:"pagination"`
}

// NewList builds a ListResponse; a nil slice is rendered as [].
func NewList[T any](items []T, nextCursor string) *ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return &ListResponse[T]{
		Data: items,
		Pagination: &Pagination{
			NextCursor: nextCursor,
			HasMore:    nextCursor != "",
		},
	}
}

// MapList converts a page of models with fn.
func MapList[M, T any](items []M, nextCursor string, fn func(M) T) *ListResponse[T] {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return NewList(out, nextCursor)
}
