package api

import (
	"net/url"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type PageOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// ParsePageOptions reads page/limit/sortBy/sortOrder query parameters.
// sortable maps accepted sortBy values to their column names; unknown
// fields fall back to the default ordering rather than erroring.
func ParsePageOptions(q url.Values, sortable map[string]string, defaultSort string) PageOptions {
	opts := PageOptions{
		Page:      defaultPage,
		Limit:     defaultLimit,
		SortBy:    defaultSort,
		SortOrder: "desc",
	}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		opts.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		opts.Limit = min(v, maxLimit)
	}
	if col, ok := sortable[q.Get("sortBy")]; ok {
		opts.SortBy = col
	}
	if order := q.Get("sortOrder"); order == "asc" {
		opts.SortOrder = "asc"
	}

	return opts
}

func (o PageOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

func NewMeta(opts PageOptions, total int) Meta {
	totalPage := total / opts.Limit
	if total%opts.Limit != 0 {
		totalPage++
	}
	return Meta{Page: opts.Page, Limit: opts.Limit, Total: total, TotalPage: totalPage}
}
