package resource

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSchema() *Schema {
	return &Schema{
		Name:          "brokers",
		Singular:      "broker",
		Table:         "brokers",
		EqualsFilters: []string{"status", "country"},
		SearchColumns: []string{"name", "contact_email"},
	}
}

func TestParseListQuery_Defaults(t *testing.T) {
	t.Parallel()

	q := ParseListQuery(testSchema(), url.Values{})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.Limit)
	assert.Empty(t, q.Search)
	assert.Empty(t, q.Equals)
	assert.Equal(t, 0, q.Offset())
}

func TestParseListQuery_Clamping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"negative page", "-3", "25", 1, 25},
		{"zero page", "0", "25", 1, 25},
		{"non-numeric page", "abc", "25", 1, 25},
		{"limit above max", "2", "500", 2, MaxPageSize},
		{"limit below min", "2", "0", 2, 1},
		{"negative limit", "2", "-10", 2, 1},
		{"non-numeric limit", "2", "lots", 2, DefaultPageSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			params := url.Values{"page": {tc.page}, "limit": {tc.limit}}
			q := ParseListQuery(testSchema(), params)
			assert.Equal(t, tc.wantPage, q.Page)
			assert.Equal(t, tc.wantLimit, q.Limit)
		})
	}
}

func TestParseListQuery_RecognizedFiltersOnly(t *testing.T) {
	t.Parallel()

	params := url.Values{
		"status":   {"active"},
		"country":  {" Norway "},
		"search":   {"  acme  "},
		"hack":     {"1; DROP TABLE brokers"},
		"ordering": {"surprise"},
	}
	q := ParseListQuery(testSchema(), params)

	assert.Equal(t, map[string]string{"status": "active", "country": "Norway"}, q.Equals)
	assert.Equal(t, "acme", q.Search)
	// Unknown parameters are ignored, not errors.
	assert.NotContains(t, q.Equals, "hack")
}

func TestListQuery_Offset(t *testing.T) {
	t.Parallel()

	q := ListQuery{Page: 3, Limit: 25}
	assert.Equal(t, 50, q.Offset())
}

func TestNewPagination(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total     int
		limit     int
		wantPages int
	}{
		{30, 25, 2},
		{25, 25, 1},
		{0, 25, 0},
		{101, 100, 2},
		{1, 1, 1},
	}
	for _, tc := range cases {
		p := NewPagination(ListQuery{Page: 1, Limit: tc.limit}, tc.total)
		assert.Equal(t, tc.wantPages, p.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
		assert.Equal(t, tc.total, p.Total)
	}
}
