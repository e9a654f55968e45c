package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusmatch/image-pipeline/internal/api"
	"github.com/campusmatch/image-pipeline/internal/config"
	"github.com/campusmatch/image-pipeline/internal/pipeline"
)

type stubBatch struct {
	gotOpts pipeline.BatchOptions
	stats   pipeline.BatchStats
}

func (s *stubBatch) Run(_ context.Context, opts pipeline.BatchOptions) (pipeline.BatchStats, error) {
	s.gotOpts = opts
	return s.stats, nil
}

type stubApp struct {
	kinds  map[string]api.Kind
	closed bool
}

func (s *stubApp) Close()                     { s.closed = true }
func (s *stubApp) Logger() *zap.Logger        { return zap.NewNop() }
func (s *stubApp) Config() config.Config      { return config.Config{} }
func (s *stubApp) Kinds() map[string]api.Kind { return s.kinds }

func withStubApp(t *testing.T, stub *stubApp) {
	t.Helper()
	orig := newApp
	newApp = func(context.Context) (App, error) { return stub, nil }
	t.Cleanup(func() { newApp = orig })
}

func TestExtractCommandRunsBatchAndClosesApp(t *testing.T) {
	batch := &stubBatch{stats: pipeline.BatchStats{RunID: "run-1", TotalProcessed: 3}}
	stub := &stubApp{kinds: map[string]api.Kind{
		"institutions": {Batch: batch},
	}}
	withStubApp(t, stub)

	root := newRootCmd()
	root.SetArgs([]string{"extract", "--kind", "institutions", "--limit", "10", "--force"})

	require.NoError(t, root.Execute())
	assert.Equal(t, 10, batch.gotOpts.Limit)
	assert.True(t, batch.gotOpts.ForceReprocess)
	assert.True(t, stub.closed)
}

func TestExtractCommandPassesIDs(t *testing.T) {
	batch := &stubBatch{}
	stub := &stubApp{kinds: map[string]api.Kind{
		"scholarships": {Batch: batch},
	}}
	withStubApp(t, stub)

	root := newRootCmd()
	root.SetArgs([]string{"extract", "--kind", "scholarships", "--ids", "7,9"})

	require.NoError(t, root.Execute())
	assert.Equal(t, []int64{7, 9}, batch.gotOpts.IDs)
	assert.False(t, batch.gotOpts.ForceReprocess)
}

func TestExtractCommandRejectsUnknownKind(t *testing.T) {
	stub := &stubApp{kinds: map[string]api.Kind{}}
	withStubApp(t, stub)

	root := newRootCmd()
	root.SetArgs([]string{"extract", "--kind", "planets"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity kind")
}
