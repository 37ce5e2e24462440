package api

import (
	"net/url"
	"testing"
)

func TestParsePageOptions(t *testing.T) {
	sortable := map[string]string{"createdAt": "created_at", "price": "price"}

	tests := []struct {
		name  string
		query string
		want  PageOptions
	}{
		{
			name:  "defaults",
			query: "",
			want:  PageOptions{Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:  "explicit page and limit",
			query: "page=3&limit=25",
			want:  PageOptions{Page: 3, Limit: 25, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:  "limit is capped",
			query: "limit=5000",
			want:  PageOptions{Page: 1, Limit: 100, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:  "non-numeric and non-positive values fall back",
			query: "page=abc&limit=-4",
			want:  PageOptions{Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:  "sortBy maps to its column",
			query: "sortBy=price&sortOrder=asc",
			want:  PageOptions{Page: 1, Limit: 10, SortBy: "price", SortOrder: "asc"},
		},
		{
			name:  "unknown sortBy keeps the default ordering",
			query: "sortBy=secret_column%3BDROP",
			want:  PageOptions{Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:  "unknown sortOrder stays desc",
			query: "sortOrder=sideways",
			want:  PageOptions{Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "desc"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatalf("bad query: %v", err)
			}
			got := ParsePageOptions(q, sortable, "created_at")
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestPageOptions_Offset(t *testing.T) {
	opts := PageOptions{Page: 3, Limit: 20}
	if got := opts.Offset(); got != 40 {
		t.Errorf("expected offset 40, got %d", got)
	}
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		limit     int
		totalPage int
	}{
		{"exact multiple", 40, 10, 4},
		{"partial last page", 35, 10, 4},
		{"empty result", 0, 10, 0},
		{"single item", 1, 10, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meta := NewMeta(PageOptions{Page: 1, Limit: tc.limit}, tc.total)
			if meta.TotalPage != tc.totalPage {
				t.Errorf("expected totalPage %d, got %d", tc.totalPage, meta.TotalPage)
			}
			if meta.Total != tc.total {
				t.Errorf("expected total %d, got %d", tc.total, meta.Total)
			}
		})
	}
}
