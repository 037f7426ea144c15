package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("r%d", i+1)
	}
	return out
}

func TestPaginateProperties(t *testing.T) {
	for n := 0; n <= 45; n++ {
		for _, size := range []int{1, 3, 10, 20, 50, 100} {
			items := numbered(n)
			_, total := Paginate(items, size, 1)
			require.Equal(t, (n+size-1)/size, total, "n=%d size=%d", n, size)

			var joined []string
			for page := 1; page <= total; page++ {
				got, _ := Paginate(items, size, page)
				require.Len(t, got, min(size, n-(page-1)*size), "n=%d size=%d page=%d", n, size, page)
				joined = append(joined, got...)
			}
			if n == 0 {
				assert.Empty(t, joined)
				continue
			}
			assert.Equal(t, items, joined, "pages must rebuild the collection (n=%d size=%d)", n, size)
		}
	}
}

func TestPaginateOutOfRange(t *testing.T) {
	items := numbered(5)
	got, total := Paginate(items, 2, 4)
	assert.Empty(t, got)
	assert.Equal(t, 3, total)

	got, total = Paginate(items, 2, 0)
	assert.Empty(t, got)
	assert.Equal(t, 3, total)

	got, total = Paginate([]string{}, 20, 1)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, total)
}

func TestPagerScenario(t *testing.T) {
	items := numbered(25)
	p := NewPager(20)
	p.Reset(len(items))

	start, end := p.Bounds()
	assert.Equal(t, numbered(20), items[start:end])
	assert.Equal(t, 2, p.TotalPages())

	require.NoError(t, p.GoTo(2))
	start, end = p.Bounds()
	assert.Equal(t, []string{"r21", "r22", "r23", "r24", "r25"}, items[start:end])

	err := p.GoTo(3)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	assert.Equal(t, 2, p.Page())

	assert.ErrorIs(t, p.GoTo(0), ErrPageOutOfRange)
	assert.ErrorIs(t, p.Next(), ErrPageOutOfRange)
	require.NoError(t, p.Prev())
	assert.Equal(t, 1, p.Page())
}

func TestPagerResets(t *testing.T) {
	p := NewPager(0)
	assert.Equal(t, DefaultPageSize, p.PageSize())

	p.Reset(100)
	require.NoError(t, p.GoTo(4))
	p.Reset(100)
	assert.Equal(t, 1, p.Page(), "replacing the records returns to page 1")

	require.NoError(t, p.GoTo(3))
	require.NoError(t, p.SetPageSize(50))
	assert.Equal(t, 1, p.Page(), "changing the page size returns to page 1")
	assert.Equal(t, 2, p.TotalPages())

	assert.ErrorIs(t, p.SetPageSize(0), ErrPageSize)
	assert.Equal(t, 50, p.PageSize())

	p.Reset(0)
	assert.Equal(t, 0, p.TotalPages())
	assert.ErrorIs(t, p.GoTo(1), ErrPageOutOfRange)
	start, end := p.Bounds()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}
