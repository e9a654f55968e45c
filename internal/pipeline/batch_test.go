package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubIDGen struct{ id string }

func (s stubIDGen) NewID() (string, error) { return s.id, nil }

func newBatchFixture(t *testing.T) (*orchFixture, *Batch) {
	t.Helper()
	f := newOrchFixture(t)
	b := NewBatch(
		f.orch,
		f.entities,
		BatchConfig{DelayEvery: 5, DefaultLimit: 50},
		stubIDGen{id: "run-123"},
		fixedClock{at: testNow},
		zap.NewNop(),
	)
	return f, b
}

func TestBatchRunAggregatesMixedOutcomes(t *testing.T) {
	f, b := newBatchFixture(t)

	entities := []Entity{
		{ID: 1, Name: "No Site U"},
		{ID: 2, Name: "Dead DNS U", Website: "https://dead.example"},
	}
	f.entities.On("ListByIDs", mock.Anything, []int64{1, 2}).Return(entities, nil)

	// entity 1 short-circuits; entity 2 fetches, finds nothing.
	f.objects.On("List", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.entities.On("SetStatus", mock.Anything, int64(2), StatusProcessing).Return(nil)
	f.pages.On("Fetch", mock.Anything, "https://dead.example").
		Return([]byte("<html></html>"), nil)
	f.entities.On("MarkFailed", mock.Anything, mock.Anything, testNow).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("", nil)

	stats, err := b.Run(context.Background(), BatchOptions{IDs: []int64{1, 2}})
	require.NoError(t, err)

	assert.Equal(t, "run-123", stats.RunID)
	assert.Equal(t, 2, stats.TotalProcessed)
	assert.Equal(t, 0, stats.Successful)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 1, stats.NoWebsite)
	require.Len(t, stats.Results, 2)
	assert.Equal(t, OutcomeNoWebsite, stats.Results[0].Kind)
	assert.Equal(t, OutcomeNoImages, stats.Results[1].Kind)
}

func TestBatchRunDefaultLimitApplied(t *testing.T) {
	f, b := newBatchFixture(t)
	f.entities.On("ListEligible", mock.Anything, false, 50).Return([]Entity{}, nil)

	stats, err := b.Run(context.Background(), BatchOptions{})
	require.NoError(t, err)
	assert.Zero(t, stats.TotalProcessed)
	f.entities.AssertExpectations(t)
}

func TestBatchRunExplicitLimitAndForce(t *testing.T) {
	f, b := newBatchFixture(t)
	f.entities.On("ListEligible", mock.Anything, true, 7).Return([]Entity{}, nil)

	_, err := b.Run(context.Background(), BatchOptions{Limit: 7, ForceReprocess: true})
	require.NoError(t, err)
	f.entities.AssertExpectations(t)
}

func TestBatchRunCountsHighQuality(t *testing.T) {
	f, b := newBatchFixture(t)

	entity := Entity{ID: 4, Name: "Statewide Tech", Website: "https://stw.edu"}
	f.entities.On("ListByIDs", mock.Anything, []int64{4}).Return([]Entity{entity}, nil)

	html := []byte(`<html><head><meta property="og:image" content="/og.png"></head></html>`)
	f.pages.On("Fetch", mock.Anything, "https://stw.edu").Return(html, nil)
	f.images.On("Download", mock.Anything, "https://stw.edu/og.png").
		Return(noisePNG(t, 800, 600), "image/png", nil)
	f.objects.On("List", mock.Anything, mock.Anything).Return([]string{}, nil)
	f.entities.On("SetStatus", mock.Anything, int64(4), StatusProcessing).Return(nil)
	f.objects.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://cdn.campusmatch.io/x.jpg", nil)
	f.entities.On("SaveSuccess", mock.Anything, int64(4), mock.Anything,
		mock.Anything, mock.Anything, testNow).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return("", nil)

	stats, err := b.Run(context.Background(), BatchOptions{IDs: []int64{4}})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 1, stats.HighQuality)
	assert.Equal(t, 0, stats.Failed)
}

func TestBatchRunStopsOnCanceledContext(t *testing.T) {
	f, b := newBatchFixture(t)
	f.entities.On("ListByIDs", mock.Anything, []int64{1}).
		Return([]Entity{{ID: 1, Name: "A"}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := b.Run(ctx, BatchOptions{IDs: []int64{1}})
	require.NoError(t, err)
	assert.Zero(t, stats.TotalProcessed)
	assert.NotEmpty(t, stats.Errors)
}

func TestBatchRunSelectionErrorAborts(t *testing.T) {
	f, b := newBatchFixture(t)
	f.entities.On("ListEligible", mock.Anything, false, 50).
		Return([]Entity{}, assert.AnError)

	_, err := b.Run(context.Background(), BatchOptions{})
	assert.Error(t, err)
	f.pages.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}
