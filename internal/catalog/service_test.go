package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/app_catalog/internal/models"
)

type recordingNotifier struct {
	events []ChangeEvent
}

func (r *recordingNotifier) CatalogChanged(ev ChangeEvent) { r.events = append(r.events, ev) }

func (r *recordingNotifier) ops() []string {
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Op
	}
	return out
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newLocalService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	svc := NewService(NewLocalBackend(t.TempDir()), WithNotifier(n), WithIDGenerator(sequentialIDs()))
	return svc, n
}

func TestCreateAppendsToOrder(t *testing.T) {
	svc, n := newLocalService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, models.AppRecord{Title: "Alpha"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, models.AppRecord{Title: "Beta", Category: "External"})
	require.NoError(t, err)

	assert.Equal(t, "id-1", first.ID)
	assert.Equal(t, models.CategoryInternal, first.Category)
	assert.Equal(t, models.CategoryExternal, second.Category)
	order, err := svc.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-1", "id-2"}, order)
	assert.Equal(t, []string{OpCreate, OpCreate}, n.ops())
}

func TestCreateKeepsSuppliedID(t *testing.T) {
	svc, _ := newLocalService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, models.AppRecord{ID: "1700000000000", Title: "Given"})
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", rec.ID)
}

func TestSaveDispatchesOnExistingID(t *testing.T) {
	svc, n := newLocalService(t)
	ctx := context.Background()

	rec, created, err := svc.Save(ctx, models.AppRecord{ID: "a", Title: "Foo"})
	require.NoError(t, err)
	assert.True(t, created)

	rec.Title = "Foo Renamed"
	_, created, err = svc.Save(ctx, rec)
	require.NoError(t, err)
	assert.False(t, created)

	apps, err := svc.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Foo Renamed", apps[0].Title)
	order, err := svc.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, order)
	assert.Equal(t, []string{OpCreate, OpUpdate}, n.ops())
}

func TestUpdateDoesNotTouchOrder(t *testing.T) {
	svc, _ := newLocalService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, models.AppRecord{ID: "a", Title: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.AppRecord{ID: "b", Title: "B"})
	require.NoError(t, err)
	require.NoError(t, svc.Reorder(ctx, []string{"b"}))

	_, err = svc.Update(ctx, models.AppRecord{ID: "a", Title: "A2"})
	require.NoError(t, err)

	order, err := svc.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, order)
	apps, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(apps))
}

func TestDeleteRemovesRecordAndOrderEntry(t *testing.T) {
	svc, n := newLocalService(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, models.AppRecord{ID: id, Title: "App " + id})
		require.NoError(t, err)
	}

	require.NoError(t, svc.Delete(ctx, "b"))

	apps, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(apps))
	order, err := svc.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, order)

	err = svc.Delete(ctx, "b")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Equal(t, OpDelete, n.ops()[len(n.ops())-1])
	assert.Len(t, n.events, 4)
}

func TestCatalogFallsBackToLegacyOrder(t *testing.T) {
	svc, _ := newLocalService(t)
	ctx := context.Background()
	late := models.AppRecord{ID: "a", Title: "Late", Order: intPtr(5)}
	early := models.AppRecord{ID: "b", Title: "Early", Order: intPtr(1)}
	require.NoError(t, svc.records.Save(ctx, late))
	require.NoError(t, svc.records.Save(ctx, early))

	apps, err := svc.Catalog(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(apps))
}

func TestCatalogScenario(t *testing.T) {
	svc, _ := newLocalService(t)
	ctx := context.Background()
	require.NoError(t, svc.records.Save(ctx, app("a", "Foo")))

	apps, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(apps))

	require.NoError(t, svc.records.Save(ctx, app("b", "Bar")))
	apps, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(apps))

	require.NoError(t, svc.Reorder(ctx, []string{"b", "a"}))
	apps, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(apps))

	require.NoError(t, svc.Reorder(ctx, []string{"c", "b", "a"}))
	apps, err = svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(apps))
}

func TestCreateReportsPartialWriteWhenOrderFails(t *testing.T) {
	committer := newFakeCommitter()
	committer.failCommit = &RemoteConflictError{Path: "orders.json", Message: "sha mismatch"}
	committer.failAfter = 1 // record commit succeeds, order commit fails
	svc := NewService(NewRemoteBackend(t.TempDir(), committer), WithIDGenerator(sequentialIDs()))

	_, err := svc.Create(context.Background(), models.AppRecord{Title: "Alpha"})

	var partial *PartialWriteError
	require.ErrorAs(t, err, &partial)
	var conflict *RemoteConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Contains(t, committer.files, "apps/alpha.json")
	assert.NotContains(t, committer.files, "orders.json")
}

func TestRemoteDeleteCommitsBothFiles(t *testing.T) {
	root := t.TempDir()
	writeCheckoutFile(t, root, "apps/alpha.json", `{"id":"a","title":"Alpha"}`)
	writeCheckoutFile(t, root, "apps/beta.json", `{"id":"b","title":"Beta"}`)
	writeCheckoutFile(t, root, "orders.json", `["b","a"]`)
	committer := newFakeCommitter()
	svc := NewService(NewRemoteBackend(root, committer))

	require.NoError(t, svc.Delete(context.Background(), "a"))

	assert.Equal(t, []string{"apps/alpha.json"}, committer.deleted)
	assert.JSONEq(t, `["b"]`, string(committer.files["orders.json"]))
}

func TestReadOnlyServiceRefusesMutations(t *testing.T) {
	root := t.TempDir()
	writeCheckoutFile(t, root, "apps/alpha.json", `{"id":"a","title":"Alpha"}`)
	svc := NewService(NewReadOnlyBackend(root))
	ctx := context.Background()

	apps, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	_, _, err = svc.Save(ctx, models.AppRecord{ID: "a", Title: "Alpha"})
	assert.True(t, errors.Is(err, ErrWritesDisabled))
	assert.ErrorIs(t, svc.Reorder(ctx, []string{"a"}), ErrWritesDisabled)
	assert.ErrorIs(t, svc.Delete(ctx, "a"), ErrWritesDisabled)
}

func TestNormalizeRejectsUnknownCategory(t *testing.T) {
	svc, _ := newLocalService(t)

	_, err := svc.Create(context.Background(), models.AppRecord{Title: "X", Category: "partner"})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "category", ve.Field)
}

func TestTimestampIDsAreUnique(t *testing.T) {
	gen := timestampIDs()
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := gen()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestCatalogFallsBackWhenOrderFileIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	var warnings []Warning
	svc := NewService(NewLocalBackend(dir), WithWarnings(func(w Warning) { warnings = append(warnings, w) }))
	writeCheckoutFile(t, dir, "apps/b.json", `{"id":"b","title":"B","order":1}`)
	writeCheckoutFile(t, dir, "apps/a.json", `{"id":"a","title":"A","order":2}`)

	for _, raw := range []string{`{}`, `null`, `[1,"a"]`} {
		writeCheckoutFile(t, dir, ordersFile, raw)
		warnings = nil

		apps, err := svc.Catalog(context.Background())
		require.NoError(t, err, raw)
		require.Len(t, apps, 2)
		assert.Equal(t, "b", apps[0].ID)
		assert.Equal(t, "a", apps[1].ID)
		require.Len(t, warnings, 1)
		assert.Equal(t, "parse", warnings[0].Op)
		assert.Equal(t, ordersFile, warnings[0].Path)
	}
}

func TestGeneratedIDsUseAppPrefix(t *testing.T) {
	svc := NewService(NewLocalBackend(t.TempDir()))
	rec, err := svc.Create(context.Background(), models.AppRecord{Title: "Prefixed"})
	require.NoError(t, err)
	assert.Regexp(t, `^app-\d+$`, rec.ID)
}
