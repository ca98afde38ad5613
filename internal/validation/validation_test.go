package validation

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIDAccepts(t *testing.T) {
	for _, id := range []string{
		"1", "42", "3.1", "3.2.1", "1.2.3.4.5",
		"my-task", "task_v1", "Task1", "task-v1-0", "abc123def",
	} {
		assert.NoError(t, ValidateID(id), "ID %q should be valid", id)
	}
}

func TestValidateIDRejects(t *testing.T) {
	for _, id := range []string{
		"", ".", "..", "1.", ".1", "1..2",
		"../etc/passwd", "foo/../bar", "/etc/passwd",
		"my task", " 1", "1 ",
		"task@home", "task#1", "task$money", "task:colon", "task|pipe",
		strings.Repeat("a", 256),
	} {
		assert.Error(t, ValidateID(id), "ID %q should be invalid", id)
	}
	assert.NoError(t, ValidateID(strings.Repeat("a", 255)))
}

func TestParentID(t *testing.T) {
	assert.Equal(t, "", ParentID("3"))
	assert.Equal(t, "3", ParentID("3.1"))
	assert.Equal(t, "3.2", ParentID("3.2.1"))
}

func TestNaturalCompareNumericSegments(t *testing.T) {
	assert.Negative(t, NaturalCompare("1", "2"))
	assert.Positive(t, NaturalCompare("10", "2"))
	assert.Zero(t, NaturalCompare("3.1", "3.1"))

	// The boundary case: 3.10 sits between 3.9 and 3.11.
	assert.Positive(t, NaturalCompare("3.10", "3.9"))
	assert.Negative(t, NaturalCompare("3.10", "3.11"))
}

func TestNaturalCompareShorterPrefixFirst(t *testing.T) {
	assert.Negative(t, NaturalCompare("3", "3.1"))
	assert.Positive(t, NaturalCompare("3.1", "3"))
}

func TestNaturalCompareMixedRuns(t *testing.T) {
	assert.Negative(t, NaturalCompare("fix2", "fix10"))
	assert.Negative(t, NaturalCompare("2", "a")) // digit runs before letters
	assert.Negative(t, NaturalCompare("a1", "a1b"))
}

func TestNaturalCompareLeadingZeros(t *testing.T) {
	assert.Zero(t, NaturalCompare("01", "1"))
	assert.Negative(t, NaturalCompare("03.02", "3.10"))
}

func TestNaturalCompareTotalOrder(t *testing.T) {
	ids := []string{"10", "3.2", "1", "3", "3.1", "2", "3.10", "3.9"}
	sort.Slice(ids, func(i, j int) bool { return NaturalCompare(ids[i], ids[j]) < 0 })
	require.Equal(t, []string{"1", "2", "3", "3.1", "3.2", "3.9", "3.10", "10"}, ids)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"My First Bean", "my-first-bean"},
		{"Fix  the -- parser!!", "fix-the-parser"},
		{"  trim me  ", "trim-me"},
		{"CamelCase123", "camelcase123"},
		{"___", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.title), "title %q", tt.title)
	}
}

func TestSlugTruncation(t *testing.T) {
	long := strings.Repeat("word ", 20)
	s := Slug(long)
	assert.LessOrEqual(t, len(s), MaxSlugLength)
	assert.False(t, strings.HasSuffix(s, "-"), "no trailing hyphen after truncation")
}

func TestSlugDeterministic(t *testing.T) {
	assert.Equal(t, Slug("Same Title"), Slug("Same Title"))
}

func TestValidatePriority(t *testing.T) {
	for p := 0; p <= 4; p++ {
		assert.NoError(t, ValidatePriority(p))
	}
	assert.Error(t, ValidatePriority(-1))
	assert.Error(t, ValidatePriority(5))
}
