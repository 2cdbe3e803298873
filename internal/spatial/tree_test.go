package spatial

import (
	"math/rand"
	"testing"

	"github.com/tomz197/quadstep/internal/physics"
)

func randomItems(rng *rand.Rand, n int, world float64) []Item {
	items := make([]Item, n)
	for i := range items {
		w := 1 + rng.Float64()*100
		h := 1 + rng.Float64()*100
		items[i] = Item{
			ID: ID(i),
			Rect: physics.Rect{
				X: rng.Float64() * (world - w),
				Y: rng.Float64() * (world - h),
				W: w,
				H: h,
			},
		}
	}
	return items
}

func containsID(items []Item, id ID) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func TestEmptyTreeQuery(t *testing.T) {
	tree := New[Item](nil, itemRect)
	if hits := tree.Query(physics.Rect{X: 0, Y: 0, W: 100, H: 100}); len(hits) != 0 {
		t.Errorf("expected no hits on empty tree, got %d", len(hits))
	}
	if tree.Depth() != 0 {
		t.Errorf("empty tree depth = %d, want 0", tree.Depth())
	}
	if tree.Remove(matchID(1)) {
		t.Error("Remove on empty tree should report nothing removed")
	}

	var zero Tree[Item]
	if hits := zero.Query(physics.Rect{W: 1, H: 1}); len(hits) != 0 {
		t.Error("zero tree should return no hits")
	}
}

func TestTreeContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := randomItems(rng, 200, 2000)
	tree := New(items, itemRect)

	for _, it := range items {
		if !containsID(tree.Query(it.Rect), it.ID) {
			t.Fatalf("query with item %d's own rect did not return it", it.ID)
		}
	}
}

func TestTreeNoFalseNegatives(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	items := randomItems(rng, 200, 2000)
	tree := New(items, itemRect)

	queries := randomItems(rng, 500, 2000)
	for _, q := range queries {
		hits := tree.Query(q.Rect)
		for _, it := range items {
			overlaps := it.Rect.Overlaps(q.Rect)
			found := containsID(hits, it.ID)
			if overlaps && !found {
				t.Fatalf("item %d overlaps query %+v but was not returned", it.ID, q.Rect)
			}
			if !overlaps && found {
				t.Fatalf("item %d does not overlap query %+v but was returned", it.ID, q.Rect)
			}
		}
	}
}

func TestTreeDepthTermination(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	items := randomItems(rng, 500, 2000)

	for _, d := range []int{1, 2, 3, 5, 8, 12} {
		tree := New(items, itemRect, WithMaxDepth(d))
		if got := tree.Depth(); got > d {
			t.Errorf("WithMaxDepth(%d) built %d levels", d, got)
		}
	}

	if got := New(items, itemRect).Depth(); got > DefaultMaxDepth {
		t.Errorf("default build has %d levels, want <= %d", got, DefaultMaxDepth)
	}
}

func TestTreeStraddlingItemStaysAtRoot(t *testing.T) {
	items := []Item{
		{ID: 1, Rect: physics.Rect{X: 0, Y: 0, W: 10, H: 10}},
		{ID: 2, Rect: physics.Rect{X: 90, Y: 90, W: 10, H: 10}},
		{ID: 3, Rect: physics.Rect{X: 40, Y: 40, W: 20, H: 20}},
	}
	tree := New(items, itemRect)
	if len(tree.root.items) != 1 || tree.root.items[0].ID != 3 {
		t.Fatalf("expected only the centered item at the root, got %+v", tree.root.items)
	}
	if tree.root.nw == nil || tree.root.se == nil {
		t.Fatal("expected NW and SE children")
	}
	if tree.root.ne != nil || tree.root.sw != nil {
		t.Error("expected no NE or SW children")
	}
}

func TestTreeDuplicatesItemOnSplitLine(t *testing.T) {
	// Item 3 touches the vertical split line x=50 but stays above the
	// horizontal one, so it lands in both NW and NE.
	items := []Item{
		{ID: 1, Rect: physics.Rect{X: 0, Y: 0, W: 10, H: 10}},
		{ID: 2, Rect: physics.Rect{X: 90, Y: 90, W: 10, H: 10}},
		{ID: 3, Rect: physics.Rect{X: 45, Y: 5, W: 10, H: 10}},
	}
	tree := New(items, itemRect)

	hits := tree.Query(physics.Rect{X: 40, Y: 0, W: 20, H: 20})
	count := 0
	for _, h := range hits {
		if h.ID == 3 {
			count++
		}
	}
	if count < 2 {
		t.Errorf("expected item 3 from both NW and NE buckets, got it %d times", count)
	}
}

func TestTreeWithBounds(t *testing.T) {
	items := []Item{{ID: 1, Rect: physics.Rect{X: 10, Y: 10, W: 5, H: 5}}}
	tree := New(items, itemRect, WithBounds(physics.Rect{X: 0, Y: 0, W: 1000, H: 1000}))
	if tree.root.cx != 500 || tree.root.cy != 500 {
		t.Errorf("root center = (%v,%v), want (500,500)", tree.root.cx, tree.root.cy)
	}
	if !containsID(tree.Query(items[0].Rect), 1) {
		t.Error("item not found with explicit bounds")
	}
}

func TestTreeQueryFuncStopsEarly(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	items := randomItems(rng, 100, 200)
	tree := New(items, itemRect)

	calls := 0
	tree.QueryFunc(physics.Rect{X: 0, Y: 0, W: 200, H: 200}, func(Item) bool {
		calls++
		return true
	})
	if calls != 1 {
		t.Errorf("expected a single callback, got %d", calls)
	}
}

func TestTreeDegenerateItem(t *testing.T) {
	items := []Item{
		{ID: 1, Rect: physics.Rect{X: 0, Y: 0, W: 100, H: 100}},
		{ID: 2, Rect: physics.Rect{X: 50, Y: 50, W: 0, H: 0}},
	}
	tree := New(items, itemRect)
	if containsID(tree.Query(physics.Rect{X: 40, Y: 40, W: 20, H: 20}), 2) {
		t.Error("degenerate item should not overlap a positive-area query")
	}
	if !containsID(tree.Query(items[1].Rect), 2) {
		t.Error("degenerate item should be found by its own rect")
	}
}

func TestTreeRemoveFromAllBuckets(t *testing.T) {
	items := []Item{
		{ID: 1, Rect: physics.Rect{X: 0, Y: 0, W: 10, H: 10}},
		{ID: 2, Rect: physics.Rect{X: 90, Y: 90, W: 10, H: 10}},
		{ID: 3, Rect: physics.Rect{X: 45, Y: 5, W: 10, H: 10}},
	}
	tree := New(items, itemRect)
	if !tree.Remove(matchID(3)) {
		t.Fatal("Remove reported nothing removed")
	}
	if containsID(tree.Query(physics.Rect{X: 0, Y: 0, W: 100, H: 100}), 3) {
		t.Error("removed item still returned")
	}
	if !containsID(tree.Query(items[0].Rect), 1) {
		t.Error("unrelated item lost after removal")
	}
}
