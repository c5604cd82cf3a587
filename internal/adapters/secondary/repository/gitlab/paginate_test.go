package gitlab

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	pages     map[int][]int
	failOn    int
	requested []int
}

func (f *fakePages) fetch(_ context.Context, page int) ([]int, error) {
	f.requested = append(f.requested, page)
	if page == f.failOn {
		return nil, errors.New("page failed")
	}

	return f.pages[page], nil
}

func TestFetchAll_StopsOnEmptyPage(t *testing.T) {
	pages := &fakePages{pages: map[int][]int{
		1: {1, 2, 3},
		2: {4, 5},
		3: {},
		4: {6},
	}}

	items, err := fetchAll(context.Background(), pages.fetch, pageOptions[int]{})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)
	assert.Equal(t, []int{1, 2, 3}, pages.requested)
}

func TestFetchAll_LimitReachedMidPage(t *testing.T) {
	pages := &fakePages{pages: map[int][]int{
		1: {1, 2, 3},
		2: {4, 5, 6},
		3: {7, 8, 9},
	}}

	items, err := fetchAll(context.Background(), pages.fetch, pageOptions[int]{Limit: 5})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)
	assert.Equal(t, []int{1, 2}, pages.requested)
}

func TestFetchAll_LimitReachedAtPageBoundary(t *testing.T) {
	pages := &fakePages{pages: map[int][]int{
		1: {1, 2},
		2: {3, 4},
		3: {5},
	}}

	items, err := fetchAll(context.Background(), pages.fetch, pageOptions[int]{Limit: 4})

	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, []int{1, 2}, pages.requested)
}

func TestFetchAll_ErrorDiscardsEarlierPages(t *testing.T) {
	pages := &fakePages{
		pages:  map[int][]int{1: {1}, 2: {2}, 3: {3}},
		failOn: 2,
	}

	items, err := fetchAll(context.Background(), pages.fetch, pageOptions[int]{})

	require.Error(t, err)
	assert.Nil(t, items)
	assert.Equal(t, []int{1, 2}, pages.requested)
}

func TestFetchAll_KeepDoesNotEndPagination(t *testing.T) {
	pages := &fakePages{pages: map[int][]int{
		1: {1, 3},
		2: {2, 4},
		3: {5},
		4: nil,
	}}

	even := func(v int) bool { return v%2 == 0 }
	items, err := fetchAll(context.Background(), pages.fetch, pageOptions[int]{Keep: even})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, items)
	assert.Equal(t, []int{1, 2, 3, 4}, pages.requested)
}

func TestFetchAll_CancelledContext(t *testing.T) {
	pages := &fakePages{pages: map[int][]int{1: {1}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := fetchAll(ctx, pages.fetch, pageOptions[int]{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, items)
	assert.Empty(t, pages.requested)
}

func TestFetchAll_EmptyFirstPage(t *testing.T) {
	pages := &fakePages{pages: map[int][]int{}}

	items, err := fetchAll(context.Background(), pages.fetch, pageOptions[int]{Limit: 10})

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, []int{1}, pages.requested)
}
