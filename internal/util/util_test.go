package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"Election Results: 2026!", "election-results-2026"},
		{"Science & Technology", "science-and-technology"},
		{"  padded   title  ", "padded-title"},
		{"---", ""},
		{"UPPER lower 123", "upper-lower-123"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestUniqueSuffix(t *testing.T) {
	got := UniqueSuffix("breaking-news")
	require.True(t, strings.HasPrefix(got, "breaking-news-"))
	require.Greater(t, len(got), len("breaking-news-"))
}

func TestCalculate(t *testing.T) {
	cases := []struct {
		page, size, from, limit int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 10, 0, 10},
		{-5, 10, 0, 10},
		{2, 0, 10, 10},
		{2, 500, 10, 10},
		{2, 25, 25, 25},
	}
	for _, tc := range cases {
		from, limit := Calculate(tc.page, tc.size)
		require.Equal(t, tc.from, from, "page=%d size=%d", tc.page, tc.size)
		require.Equal(t, tc.limit, limit, "page=%d size=%d", tc.page, tc.size)
	}
}

func TestParseIntDefault(t *testing.T) {
	require.Equal(t, 7, ParseIntDefault("7", 1))
	require.Equal(t, 1, ParseIntDefault("", 1))
	require.Equal(t, 1, ParseIntDefault("abc", 1))
	require.Equal(t, -2, ParseIntDefault("-2", 1))
}
