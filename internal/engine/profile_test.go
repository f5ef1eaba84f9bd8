package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/record"
	"github.com/dbscout/dbscout/internal/store"
)

const postsSampleSQL = `SELECT * FROM "posts" LIMIT ?`

func TestDescribeInfersProfiles(t *testing.T) {
	st := newFakeStore()
	st.results[postsSampleSQL] = &store.ResultSet{
		Columns: []string{"id", "title", "score"},
		Rows: []record.Record{
			{
				"id":    record.IntValue(1),
				"title": record.TextValue("Looking for a comfortable wireless bra"),
				"score": record.IntValue(42),
			},
			{
				"id":    record.IntValue(2),
				"title": record.TextValue("Knix review after six months"),
				"score": record.IntValue(7),
			},
		},
	}

	profiler := testProfiler(st, nil)

	profiles, err := profiler.Describe(context.Background(), "posts")
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	// Store column order is preserved, not sorted.
	assert.Equal(t, "id", profiles[0].Column)
	assert.Equal(t, "title", profiles[1].Column)
	assert.Equal(t, "score", profiles[2].Column)

	assert.Equal(t, TypeInteger, profiles[0].InferredType)
	assert.False(t, profiles[0].TextSearchable)

	assert.Equal(t, TypeText, profiles[1].InferredType)
	assert.True(t, profiles[1].TextSearchable)
	assert.NotEmpty(t, profiles[1].SampleValues)

	assert.Equal(t, TypeInteger, profiles[2].InferredType)
}

func TestDescribeEmptyTable(t *testing.T) {
	st := newFakeStore()
	st.results[postsSampleSQL] = &store.ResultSet{
		Columns: []string{"id", "title"},
	}

	profiles, err := testProfiler(st, nil).Describe(context.Background(), "posts")
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	for _, p := range profiles {
		assert.Equal(t, TypeUnknown, p.InferredType)
		assert.True(t, p.NoData)
		assert.False(t, p.TextSearchable)
		assert.Empty(t, p.SampleValues)
	}
}

func TestDescribeUnknownTable(t *testing.T) {
	st := newFakeStore()

	_, err := testProfiler(st, nil).Describe(context.Background(), "posts")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUnknownTable))
}

func TestDescribeConnectionErrorPropagates(t *testing.T) {
	st := newFakeStore()
	st.errs[postsSampleSQL] = errors.New(errors.ErrTypeConnection, "store is unreachable")

	_, err := testProfiler(st, nil).Describe(context.Background(), "posts")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConnection))
}

func TestDescribeCacheFirst(t *testing.T) {
	st := newFakeStore()
	st.results[postsSampleSQL] = &store.ResultSet{
		Columns: []string{"id"},
		Rows:    []record.Record{{"id": record.IntValue(1)}},
	}

	cache := NewProfileCache(time.Minute)
	profiler := testProfiler(st, cache)

	_, err := profiler.Describe(context.Background(), "posts")
	require.NoError(t, err)

	_, err = profiler.Describe(context.Background(), "posts")
	require.NoError(t, err)

	assert.Equal(t, 1, st.queryCount())

	cache.Invalidate("posts")

	_, err = profiler.Describe(context.Background(), "posts")
	require.NoError(t, err)

	assert.Equal(t, 2, st.queryCount())
}

func TestDescribeTruncatesLongSamples(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}

	st := newFakeStore()
	st.results[postsSampleSQL] = &store.ResultSet{
		Columns: []string{"body"},
		Rows:    []record.Record{{"body": record.TextValue(string(long))}},
	}

	profiles, err := testProfiler(st, nil).Describe(context.Background(), "posts")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.Len(t, profiles[0].SampleValues, 1)

	assert.Len(t, profiles[0].SampleValues[0], maxSampleDisplayLen+3)
}
