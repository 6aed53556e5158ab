package syncer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/component-atlas/internal/component"
	"github.com/mvp-joe/component-atlas/internal/parser"
	"github.com/mvp-joe/component-atlas/internal/store"
)

// Test Plan for Engine:
// - Concrete diff: P=[A,B], F=[B(changed),C] -> new=[C], updated=[B], removed=[A]
// - First run against an empty store reports everything as new
// - Idempotence: a second run over the fixture project reports no changes
// - Parse failure returns Success=false and leaves the store untouched
// - Corrupt store aborts without overwriting it
// - Save failure returns Success=false
// - Duplicate names collapse to the last definition
// - Parse warnings are carried into the report
// - Every successful run gets a distinct generation ID

type fakeSource struct {
	records  []component.ComponentRecord
	warnings []parser.Warning
	err      error
	calls    int
}

func (f *fakeSource) Parse(ctx context.Context) (*parser.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	result := &parser.Result{Warnings: f.warnings}
	for _, r := range f.records {
		result.Outcomes = append(result.Outcomes, parser.Outcome{Kind: parser.Recognized, Name: r.Name, Record: component.Normalize(r)})
	}
	return result, nil
}

type failingStore struct {
	store.Store
	saveErr error
}

func (s *failingStore) Save(ctx context.Context, records []component.ComponentRecord) error {
	return s.saveErr
}

func rec(name, description string) component.ComponentRecord {
	return component.Normalize(component.ComponentRecord{Name: name, Description: description})
}

func newTestStore(t *testing.T) *store.FileStore {
	t.Helper()
	return store.NewFileStore(filepath.Join(t.TempDir(), ".atlas", "components.json"))
}

func TestEngine_DiffScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Save(ctx, []component.ComponentRecord{rec("A", ""), rec("B", "")}))

	source := &fakeSource{records: []component.ComponentRecord{rec("B", "changed"), rec("C", "")}}
	report, records := New(source, st, nil).Sync(ctx)

	require.True(t, report.Success, report.Error)
	assert.Equal(t, []string{"C"}, report.NewComponents)
	assert.Equal(t, []string{"B"}, report.UpdatedComponents)
	assert.Equal(t, []string{"A"}, report.RemovedComponents)
	assert.Equal(t, 0, report.UnchangedCount)
	assert.Equal(t, 2, report.ComponentCount)
	require.Len(t, records, 2)

	persisted, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 2)
	assert.Equal(t, "B", persisted[0].Name)
	assert.Equal(t, "changed", persisted[0].Description)
	assert.Equal(t, "C", persisted[1].Name)
}

func TestEngine_FirstRun(t *testing.T) {
	t.Parallel()

	source := &fakeSource{records: []component.ComponentRecord{rec("Button", ""), rec("Card", "")}}
	report, _ := New(source, newTestStore(t), nil).Sync(context.Background())

	require.True(t, report.Success)
	assert.Equal(t, []string{"Button", "Card"}, report.NewComponents)
	assert.Empty(t, report.UpdatedComponents)
	assert.Empty(t, report.RemovedComponents)
	assert.NotEmpty(t, report.GenerationID)
	assert.True(t, report.Changed())
}

func TestEngine_IdempotentOnFixture(t *testing.T) {
	t.Parallel()

	p, err := parser.New(parser.Options{
		RootDir:           "../../testdata/ui",
		Manifest:          "src/index.ts",
		ComponentPatterns: []string{"src/**/*.tsx"},
		DocPatterns:       []string{"docs/**/*.md"},
	})
	require.NoError(t, err)

	engine := New(p, newTestStore(t), nil)
	ctx := context.Background()

	first, _ := engine.Sync(ctx)
	require.True(t, first.Success, first.Error)
	assert.Len(t, first.NewComponents, first.ComponentCount)
	assert.NotEmpty(t, first.Warnings)

	second, _ := engine.Sync(ctx)
	require.True(t, second.Success, second.Error)
	assert.Empty(t, second.NewComponents)
	assert.Empty(t, second.UpdatedComponents)
	assert.Empty(t, second.RemovedComponents)
	assert.Equal(t, first.ComponentCount, second.UnchangedCount)
	assert.False(t, second.Changed())
	assert.NotEqual(t, first.GenerationID, second.GenerationID)
}

func TestEngine_ParseFailureKeepsPrevious(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Save(ctx, []component.ComponentRecord{rec("A", "kept")}))

	source := &fakeSource{err: parser.ErrParseFailure}
	report, records := New(source, st, nil).Sync(ctx)

	assert.False(t, report.Success)
	assert.Contains(t, report.Error, "manifest parse failure")
	assert.Nil(t, records)
	assert.Empty(t, report.GenerationID)

	persisted, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "kept", persisted[0].Description)
}

func TestEngine_CorruptStoreAborts(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(st.Path()), 0755))
	require.NoError(t, os.WriteFile(st.Path(), []byte("{not json"), 0644))

	source := &fakeSource{records: []component.ComponentRecord{rec("A", "")}}
	report, _ := New(source, st, nil).Sync(context.Background())

	assert.False(t, report.Success)
	assert.Contains(t, report.Error, "load previous generation")

	data, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestEngine_SaveFailure(t *testing.T) {
	t.Parallel()

	st := &failingStore{Store: newTestStore(t), saveErr: errors.New("disk full")}
	source := &fakeSource{records: []component.ComponentRecord{rec("A", "")}}

	report, records := New(source, st, nil).Sync(context.Background())
	assert.False(t, report.Success)
	assert.Contains(t, report.Error, "disk full")
	assert.Nil(t, records)
}

func TestEngine_DuplicatesAndWarnings(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		records: []component.ComponentRecord{rec("Button", "first"), rec("Card", ""), rec("Button", "second")},
		warnings: []parser.Warning{
			{File: "src/index.ts", Line: 3, Message: "skipped export icons: namespace re-export"},
		},
	}
	report, records := New(source, newTestStore(t), nil).Sync(context.Background())

	require.True(t, report.Success)
	assert.Equal(t, 2, report.ComponentCount)
	require.Len(t, records, 2)
	assert.Equal(t, "Button", records[0].Name)
	assert.Equal(t, "second", records[0].Description)
	assert.Equal(t, []string{"src/index.ts:3: skipped export icons: namespace re-export"}, report.Warnings)
}

func TestDiff_Unchanged(t *testing.T) {
	t.Parallel()

	d := Diff([]component.ComponentRecord{rec("A", "x")}, []component.ComponentRecord{rec("A", "x")})
	assert.Equal(t, 1, d.Unchanged)
	assert.Empty(t, d.New)
	assert.Empty(t, d.Updated)
	assert.Empty(t, d.Removed)
}

func TestSyncReport_Summary(t *testing.T) {
	t.Parallel()

	ok := &SyncReport{Success: true, ComponentCount: 3, NewComponents: []string{"C"}, UnchangedCount: 2, Warnings: []string{"w"}}
	assert.Equal(t, "3 components (1 new, 0 updated, 0 removed, 2 unchanged), 1 warnings", ok.Summary())

	failed := &SyncReport{Error: "boom"}
	assert.Equal(t, "sync failed: boom", failed.Summary())
}
