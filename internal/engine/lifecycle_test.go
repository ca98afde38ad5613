package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/beans/internal/types"
)

func TestClaimAcquire(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t"})

	f, err := e.Claim(ctx(), "1", "alice", false)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, f.Bean.Status)
	assert.Equal(t, "alice", f.Bean.ClaimedBy)
	assert.NotNil(t, f.Bean.ClaimedAt)
}

func TestClaimRequiresActor(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t"})
	_, err := e.Claim(ctx(), "1", "", false)
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
}

// S5 (sequentialized): the second claimant observes the first claim and
// fails; --force takes the bean over.
func TestClaimAlreadyClaimed(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t"})
	_, err := e.Claim(ctx(), "1", "alice", false)
	require.NoError(t, err)

	_, err = e.Claim(ctx(), "1", "bob", false)
	require.Error(t, err)
	assert.Equal(t, types.KindStatusConflict, types.KindOf(err))

	f, err := e.Claim(ctx(), "1", "bob", true)
	require.NoError(t, err)
	assert.Equal(t, "bob", f.Bean.ClaimedBy)
}

func TestClaimClosedBeanFails(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t"})
	_, err := e.Close(ctx(), "1", "", true)
	require.NoError(t, err)

	_, err = e.Claim(ctx(), "1", "alice", false)
	require.Error(t, err)
	assert.Equal(t, types.KindStatusConflict, types.KindOf(err))
}

func TestClaimSizeGate(t *testing.T) {
	e := newTestEngine(t)
	cfg, err := e.Store.LoadConfig()
	require.NoError(t, err)
	cfg.MaxTokens = 10
	require.NoError(t, e.Store.SaveConfig(cfg))

	mustCreate(t, e, CreateOptions{Title: "huge", Description: strings.Repeat("word ", 100)})
	_, err = e.Claim(ctx(), "1", "alice", false)
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
	assert.Contains(t, err.Error(), "decompose")
}

func TestReleaseClearsClaim(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t"})
	_, err := e.Claim(ctx(), "1", "alice", false)
	require.NoError(t, err)

	f, err := e.Release(ctx(), "1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusOpen, f.Bean.Status)
	assert.Empty(t, f.Bean.ClaimedBy)
	assert.Nil(t, f.Bean.ClaimedAt)
}

func TestReleaseOpenBeanFails(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t"})
	_, err := e.Release(ctx(), "1")
	require.Error(t, err)
	assert.Equal(t, types.KindStatusConflict, types.KindOf(err))
}

func TestCloseClearsClaimAndArchives(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t", Verify: "false"})
	_, err := e.Claim(ctx(), "1", "alice", false)
	require.NoError(t, err)

	outcome, err := e.Close(ctx(), "1", "shipped", true)
	require.NoError(t, err)
	bean := outcome.File.Bean
	assert.Equal(t, types.StatusClosed, bean.Status)
	assert.NotNil(t, bean.ClosedAt)
	assert.Equal(t, "shipped", bean.CloseReason)
	assert.Empty(t, bean.ClaimedBy)
	assert.Nil(t, bean.ClaimedAt)
	assert.True(t, outcome.File.Archived())
	assert.Contains(t, outcome.File.Path, "archive")
}

func TestCloseAlreadyClosedFails(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t"})
	_, err := e.Close(ctx(), "1", "", true)
	require.NoError(t, err)
	_, err = e.Close(ctx(), "1", "", true)
	require.Error(t, err)
	assert.Equal(t, types.KindStatusConflict, types.KindOf(err))
}

func TestFailedCloseAppendsExactlyOneNote(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t", Verify: "echo nope; exit 1"})

	_, err := e.Close(ctx(), "1", "", false)
	require.Error(t, err)

	f, err := e.Store.Load("1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.Bean.Attempts)
	assert.Equal(t, 1, strings.Count(f.Bean.Notes, "## Attempt"))
	assert.Contains(t, f.Bean.Notes, "Exit code: 1")
	assert.Contains(t, f.Bean.Notes, "nope")

	// A second failure appends a second entry.
	_, err = e.Close(ctx(), "1", "", false)
	require.Error(t, err)
	f, err = e.Store.Load("1")
	require.NoError(t, err)
	assert.Equal(t, 2, f.Bean.Attempts)
	assert.Equal(t, 2, strings.Count(f.Bean.Notes, "## Attempt"))
}

func TestCloseReopenLaw(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t", Verify: "false"})

	// One failed attempt, then a forced close.
	_, err := e.Close(ctx(), "1", "", false)
	require.Error(t, err)
	_, err = e.Close(ctx(), "1", "", true)
	require.NoError(t, err)

	f, err := e.Reopen(ctx(), "1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusOpen, f.Bean.Status)
	assert.Nil(t, f.Bean.ClosedAt)
	assert.Equal(t, 1, f.Bean.Attempts, "reopen preserves attempts")
	assert.False(t, f.Archived(), "reopen restores the active tree")
}

func TestReopenOpenBeanFails(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t"})
	_, err := e.Reopen(ctx(), "1")
	require.Error(t, err)
	assert.Equal(t, types.KindStatusConflict, types.KindOf(err))
}

func TestArchiveUnarchiveIdentity(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t", Description: "contents"})
	_, err := e.Close(ctx(), "1", "done", true)
	require.NoError(t, err)

	archived, err := e.Store.Load("1")
	require.NoError(t, err)
	require.True(t, archived.Archived())

	f, err := e.Unarchive(ctx(), "1")
	require.NoError(t, err)
	assert.False(t, f.Archived())
	// Identity on contents apart from the location mirror.
	archived.Bean.IsArchived = false
	assert.Equal(t, archived.Bean, f.Bean)
}

func TestUpdateFields(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "old title"})

	title := "new title"
	p := 0
	f, err := e.Update(ctx(), "1", UpdateOptions{
		Title:     &title,
		Priority:  &p,
		AddLabels: []string{"x", "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new title", f.Bean.Title)
	assert.Equal(t, 0, f.Bean.Priority)
	assert.Equal(t, []string{"x", "y"}, f.Bean.Labels)
	// Slug is stable once set: the filename keeps tracking it.
	assert.Equal(t, "old-title", f.Bean.Slug)
}

func TestUpdateNotesAppendOnly(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t", Notes: "first"})
	_, err := e.Update(ctx(), "1", UpdateOptions{AppendNotes: "second"})
	require.NoError(t, err)

	f, err := e.Store.Load("1")
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond", f.Bean.Notes)
}

func TestUpdateAdvancesUpdatedAt(t *testing.T) {
	e := newTestEngine(t)
	f := mustCreate(t, e, CreateOptions{Title: "t"})
	before := f.Bean.UpdatedAt

	e.Now = func() time.Time { return before.Add(time.Minute) }
	updated, err := e.Update(ctx(), "1", UpdateOptions{AppendNotes: "tick"})
	require.NoError(t, err)
	assert.True(t, updated.Bean.UpdatedAt.After(before))
}

func TestAdoptRenumbersAndRewritesReferences(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "parent"})                                 // 1
	mustCreate(t, e, CreateOptions{Title: "floater"})                                // 2
	mustCreate(t, e, CreateOptions{Title: "dependent", Dependencies: []string{"2"}}) // 3

	mapping, err := e.Adopt(ctx(), "1", []string{"2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"2": "1.1"}, mapping)

	adopted, err := e.Store.Load("1.1")
	require.NoError(t, err)
	assert.Equal(t, "1", adopted.Bean.Parent)
	assert.Equal(t, "floater", adopted.Bean.Title)

	_, err = e.Store.Find("2")
	require.Error(t, err)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))

	dependent, err := e.Store.Load("3")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1"}, dependent.Bean.Dependencies)
}

func TestAdoptMultipleTakesSequentialSlots(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "parent"})                      // 1
	mustCreate(t, e, CreateOptions{Title: "a"})                           // 2
	mustCreate(t, e, CreateOptions{Title: "b"})                           // 3
	mustCreate(t, e, CreateOptions{Title: "existing child", Parent: "1"}) // 1.1

	mapping, err := e.Adopt(ctx(), "1", []string{"2", "3"})
	require.NoError(t, err)
	assert.Equal(t, "1.2", mapping["2"])
	assert.Equal(t, "1.3", mapping["3"])
}

func TestAdoptSelfFails(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "parent"})
	_, err := e.Adopt(ctx(), "1", []string{"1"})
	require.Error(t, err)
	assert.Equal(t, types.KindCycleDetected, types.KindOf(err))
}

func TestTidyArchivesAndReleases(t *testing.T) {
	e := newTestEngine(t)

	// A closed bean stranded in the active tree (as if closed by an older
	// tool that did not archive).
	f := mustCreate(t, e, CreateOptions{Title: "stranded"})
	now := e.now()
	f.Bean.Status = types.StatusClosed
	f.Bean.ClosedAt = &now
	require.NoError(t, e.Store.Write(f))

	// A stale claim.
	mustCreate(t, e, CreateOptions{Title: "stale"})
	claimed, err := e.Claim(ctx(), "2", "ghost", false)
	require.NoError(t, err)
	old := now.Add(-48 * time.Hour)
	claimed.Bean.ClaimedAt = &old
	require.NoError(t, e.Store.Write(claimed))

	// A fresh claim that must survive.
	mustCreate(t, e, CreateOptions{Title: "fresh"})
	_, err = e.Claim(ctx(), "3", "active-agent", false)
	require.NoError(t, err)

	report, err := e.Tidy(ctx(), TidyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, report.Archived)
	assert.Equal(t, []string{"2"}, report.Released)

	released, err := e.Store.Load("2")
	require.NoError(t, err)
	assert.Equal(t, types.StatusOpen, released.Bean.Status)
	fresh, err := e.Store.Load("3")
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, fresh.Bean.Status)

	archived, err := e.Store.Load("1")
	require.NoError(t, err)
	assert.True(t, archived.Archived())
}

func TestTidyDryRunChangesNothing(t *testing.T) {
	e := newTestEngine(t)
	f := mustCreate(t, e, CreateOptions{Title: "stranded"})
	now := e.now()
	f.Bean.Status = types.StatusClosed
	f.Bean.ClosedAt = &now
	require.NoError(t, e.Store.Write(f))

	report, err := e.Tidy(ctx(), TidyOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, report.Archived)

	still, err := e.Store.Load("1")
	require.NoError(t, err)
	assert.False(t, still.Archived())
}

func TestVerifyDoesNotMutate(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "t", Verify: "false"})
	before, err := e.Store.Load("1")
	require.NoError(t, err)

	res, err := e.Verify(ctx(), "1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)

	after, err := e.Store.Load("1")
	require.NoError(t, err)
	assert.Equal(t, before.Bean, after.Bean)
}

func TestVerifyGoalFails(t *testing.T) {
	e := newTestEngine(t)
	mustCreate(t, e, CreateOptions{Title: "goal"})
	_, err := e.Verify(ctx(), "1")
	require.Error(t, err)
	assert.Equal(t, types.KindValidation, types.KindOf(err))
}
