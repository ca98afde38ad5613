package hooks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/beans/internal/types"
)

func writeHook(t *testing.T, dir, phase, script string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, phase)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
}

func testBean() *types.Bean {
	return types.New("1", "hooked", time.Now().UTC().Truncate(time.Second))
}

func collectNotices(d *Dispatcher) *[]string {
	var notices []string
	d.Notice = func(format string, args ...interface{}) {
		notices = append(notices, fmt.Sprintf(format, args...))
	}
	return &notices
}

func TestMissingHookIsNoop(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "hooks"), true)
	assert.NoError(t, d.RunPre(context.Background(), PreCreate, testBean(), ""))
}

func TestUntrustedHookSkippedWithNotice(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hooks")
	writeHook(t, dir, PreClose, "exit 1")
	d := New(dir, false)
	notices := collectNotices(d)

	// The rejecting hook does not fire: the transition proceeds.
	assert.NoError(t, d.RunPre(context.Background(), PreClose, testBean(), ""))
	require.Len(t, *notices, 1)
	assert.Contains(t, (*notices)[0], "not trusted")

	// The notice is emitted once per process, not per hook.
	assert.NoError(t, d.RunPre(context.Background(), PreClose, testBean(), ""))
	assert.Len(t, *notices, 1)
}

func TestNonExecutableHookSkipped(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hooks")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, PreCreate), []byte("#!/bin/sh\nexit 1\n"), 0o644))
	d := New(dir, true)
	assert.NoError(t, d.RunPre(context.Background(), PreCreate, testBean(), ""))
}

func TestPreHookRejectionSurfacesStderr(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hooks")
	writeHook(t, dir, PreClose, "echo 'not so fast' 1>&2\nexit 1")
	d := New(dir, true)

	err := d.RunPre(context.Background(), PreClose, testBean(), "why")
	require.Error(t, err)
	assert.Equal(t, types.KindHookRejected, types.KindOf(err))
	assert.Contains(t, err.Error(), "not so fast")
}

func TestPreHookReceivesJSONPayload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hooks")
	out := filepath.Join(t.TempDir(), "payload.json")
	writeHook(t, dir, PreUpdate, "cat > "+out)
	d := New(dir, true)

	require.NoError(t, d.RunPre(context.Background(), PreUpdate, testBean(), "reason text"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"pre-update"`)
	assert.Contains(t, string(data), `"id":"1"`)
	assert.Contains(t, string(data), `"reason":"reason text"`)
}

func TestHookArgsAreIDAndPhase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hooks")
	out := filepath.Join(t.TempDir(), "args.txt")
	writeHook(t, dir, PostCreate, "echo \"$1 $2\" > "+out)
	d := New(dir, true)

	d.RunPost(context.Background(), PostCreate, testBean(), "")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "1 post-create\n", string(data))
}

func TestPostHookFailureIsWarningOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hooks")
	writeHook(t, dir, PostClose, "echo boom 1>&2\nexit 7")
	d := New(dir, true)
	notices := collectNotices(d)

	d.RunPost(context.Background(), PostClose, testBean(), "")
	require.Len(t, *notices, 1)
	assert.Contains(t, (*notices)[0], "boom")
}
