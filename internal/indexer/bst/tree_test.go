package bst

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/word"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
)

type entry struct {
	key string
	id  int
}

func (e *entry) Key() string { return e.key }

func keysOf[T Keyed](c *Cursor[T]) []string {
	var keys []string
	for item := range c.All() {
		keys = append(keys, item.Key())
	}
	return keys
}

func buildTree(t *testing.T, keys ...string) *Tree[*entry] {
	t.Helper()
	tr := New[*entry]()
	for i, k := range keys {
		require.NoError(t, tr.Insert(&entry{key: k, id: i}))
	}
	return tr
}

func randomWords(r *rand.Rand, n int) []string {
	const letters = "abcdefghij"
	out := make([]string, n)
	for i := range out {
		b := make([]byte, 1+r.Intn(4))
		for j := range b {
			b[j] = letters[r.Intn(len(letters))]
		}
		out[i] = string(b)
	}
	return out
}

func TestInsertRejectsNil(t *testing.T) {
	tr := buildTree(t, "m")
	err := tr.Insert(nil)
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	require.Equal(t, 1, tr.Len())
	require.Equal(t, []string{"m"}, keysOf(tr.InOrder()))
}

func TestInsertFirstItemBecomesRoot(t *testing.T) {
	tr := New[*entry]()
	require.True(t, tr.IsEmpty())
	_, ok := tr.Root()
	require.False(t, ok)

	require.NoError(t, tr.Insert(&entry{key: "solo"}))
	root, ok := tr.Root()
	require.True(t, ok)
	require.Equal(t, "solo", root.Key())
	require.Equal(t, 1, tr.Len())
	require.Equal(t, 1, tr.Height())
}

func TestInOrderIsSorted(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		words := randomWords(r, 1+r.Intn(200))
		tr := buildTree(t, words...)

		got := keysOf(tr.InOrder())
		want := append([]string(nil), words...)
		sort.Strings(want)
		require.Equal(t, want, got, "round %d", round)
		require.Equal(t, len(words), tr.Len())
	}
}

func TestDuplicateKeysDescendLeft(t *testing.T) {
	tr := buildTree(t, "dog", "cat", "ant", "dog")

	require.Equal(t, 4, tr.Len())
	require.Equal(t, []string{"ant", "cat", "dog", "dog"}, keysOf(tr.InOrder()))

	// The second dog lands as the right child of cat, inside the first dog's
	// left subtree.
	var ids []int
	for e := range tr.PreOrder().All() {
		ids = append(ids, e.id)
	}
	require.Equal(t, []int{0, 1, 2, 3}, ids)

	ids = ids[:0]
	for e := range tr.PostOrder().All() {
		ids = append(ids, e.id)
	}
	require.Equal(t, []int{2, 3, 1, 0}, ids)

	ids = ids[:0]
	for e := range tr.InOrder().All() {
		ids = append(ids, e.id)
	}
	require.Equal(t, []int{2, 1, 3, 0}, ids)
}

func TestTraversalOrders(t *testing.T) {
	tr := buildTree(t, "m", "f", "t", "b", "h", "p", "w")

	assert.Equal(t, []string{"b", "f", "h", "m", "p", "t", "w"}, keysOf(tr.InOrder()))
	assert.Equal(t, []string{"m", "f", "b", "h", "t", "p", "w"}, keysOf(tr.PreOrder()))
	assert.Equal(t, []string{"b", "h", "f", "p", "w", "t", "m"}, keysOf(tr.PostOrder()))
	assert.Equal(t, 3, tr.Height())
}

func TestTraversalsOnEmptyTree(t *testing.T) {
	tr := New[*entry]()
	for _, c := range []*Cursor[*entry]{tr.InOrder(), tr.PreOrder(), tr.PostOrder()} {
		require.False(t, c.HasNext())
		_, err := c.Next()
		require.ErrorIs(t, err, apperrors.ErrEndOfSequence)
	}
	require.Zero(t, tr.Height())
}

func TestSearch(t *testing.T) {
	empty := New[*entry]()
	_, ok, err := empty.Search("anything")
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = empty.Search("")
	require.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	tr := buildTree(t, "m", "f", "t", "b")
	got, ok, err := tr.Search("b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, got.id)

	_, ok, err = tr.Search("z")
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, tr.Contains("t"))
	require.False(t, tr.Contains("q"))
}

func TestSearchResultMutatesStoredRecord(t *testing.T) {
	tr := New[*word.Record]()
	rec := word.New("dog")
	rec.AddOccurrence("a.txt", 1)
	require.NoError(t, tr.Insert(rec))

	found, ok, err := tr.Search("dog")
	require.NoError(t, err)
	require.True(t, ok)
	found.AddOccurrence("a.txt", 4)

	again, ok, err := tr.Search("dog")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []int{1, 4}, again.Lines("a.txt"))
	require.Equal(t, 2, again.TotalFrequency())
}

func TestRemoveOnEmptyTreeIsIdempotent(t *testing.T) {
	tr := New[*entry]()
	for i := 0; i < 3; i++ {
		_, ok := tr.RemoveMin()
		require.False(t, ok)
		_, ok = tr.RemoveMax()
		require.False(t, ok)
		require.Zero(t, tr.Len())
	}

	tr = buildTree(t, "only")
	got, ok := tr.RemoveMax()
	require.True(t, ok)
	require.Equal(t, "only", got.Key())
	_, ok = tr.RemoveMin()
	require.False(t, ok)
	require.Zero(t, tr.Len())
	require.True(t, tr.IsEmpty())
}

func TestRemoveMinSplicesRightSubtree(t *testing.T) {
	tr := buildTree(t, "m", "c", "x", "e", "d")

	got, ok := tr.RemoveMin()
	require.True(t, ok)
	require.Equal(t, "c", got.Key())
	require.Equal(t, 4, tr.Len())
	require.Equal(t, []string{"d", "e", "m", "x"}, keysOf(tr.InOrder()))
}

func TestRemoveMaxSplicesLeftSubtree(t *testing.T) {
	tr := buildTree(t, "m", "c", "x", "q", "r")

	got, ok := tr.RemoveMax()
	require.True(t, ok)
	require.Equal(t, "x", got.Key())
	require.Equal(t, 4, tr.Len())
	require.Equal(t, []string{"c", "m", "q", "r"}, keysOf(tr.InOrder()))
}

func TestRemoveAtRoot(t *testing.T) {
	tr := buildTree(t, "m", "c", "a")
	got, ok := tr.RemoveMax()
	require.True(t, ok)
	require.Equal(t, "m", got.Key())
	root, _ := tr.Root()
	require.Equal(t, "c", root.Key())

	tr = buildTree(t, "m", "x", "z")
	got, ok = tr.RemoveMin()
	require.True(t, ok)
	require.Equal(t, "m", got.Key())
	root, _ = tr.Root()
	require.Equal(t, "x", root.Key())
	require.Equal(t, []string{"x", "z"}, keysOf(tr.InOrder()))
}

func TestCountAfterInsertsAndRemovals(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		words := randomWords(r, 50+r.Intn(100))
		tr := buildTree(t, words...)
		removed := 0
		for i := 0; i < len(words)+5; i++ {
			before := keysOf(tr.InOrder())
			var got *entry
			var ok bool
			if r.Intn(2) == 0 {
				got, ok = tr.RemoveMin()
				if ok {
					require.Equal(t, before[0], got.Key())
				}
			} else {
				got, ok = tr.RemoveMax()
				if ok {
					require.Equal(t, before[len(before)-1], got.Key())
				}
			}
			if ok {
				removed++
			}
			after := keysOf(tr.InOrder())
			require.Equal(t, len(words)-removed, tr.Len())
			require.Len(t, after, tr.Len(), "nodes lost during removal")
			require.True(t, sort.StringsAreSorted(after))
		}
		require.Equal(t, 0, tr.Len())
	}
}

func TestClear(t *testing.T) {
	tr := buildTree(t, "a", "b", "c")
	tr.Clear()
	require.True(t, tr.IsEmpty())
	require.Zero(t, tr.Len())
	require.NoError(t, tr.Insert(&entry{key: "d"}))
	require.Equal(t, 1, tr.Len())
}

func TestHeightOfDegenerateTree(t *testing.T) {
	keys := make([]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		keys = append(keys, fmt.Sprintf("w%04d", i))
	}
	tr := buildTree(t, keys...)
	require.Equal(t, 1000, tr.Height())
	require.Equal(t, keys, keysOf(tr.InOrder()))
}
