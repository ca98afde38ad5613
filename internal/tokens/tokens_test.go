package tokens

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/beans/internal/types"
)

func TestExtractFilePaths(t *testing.T) {
	text := "See internal/store/store.go and `cmd/bn/main.go` plus ./scripts/run.sh\n" +
		"Also docs/design.md but not example.com or foo.exe"
	paths := ExtractFilePaths(text)
	assert.Equal(t, []string{
		"internal/store/store.go",
		"cmd/bn/main.go",
		"./scripts/run.sh",
		"docs/design.md",
	}, paths)
}

func TestExtractFilePathsDeduplicates(t *testing.T) {
	paths := ExtractFilePaths("a.go then a.go again")
	assert.Equal(t, []string{"a.go"}, paths)
}

func TestEstimateCountsBeanText(t *testing.T) {
	bean := types.New("1", strings.Repeat("t", 40), time.Now())
	bean.Description = strings.Repeat("d", 40)
	bean.Acceptance = strings.Repeat("a", 40)
	got := Estimate(bean, t.TempDir())
	assert.Equal(t, int64(30), got) // 120 chars / 4
}

func TestEstimateIncludesReferencedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ref.go"), []byte(strings.Repeat("x", 400)), 0o644))

	bean := types.New("1", "t", time.Now())
	bean.Description = "touches ref.go"
	withFile := Estimate(bean, dir)

	bean.Description = "touches missing.go"
	withoutFile := Estimate(bean, dir)

	assert.Greater(t, withFile, withoutFile)
	assert.GreaterOrEqual(t, withFile-withoutFile, int64(90))
}
