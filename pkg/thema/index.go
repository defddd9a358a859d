package thema

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

// FeatureIndex provides fast spatial queries over a thematic dataset
// using an R-tree.
//
// The renderer builds one when an explicit extent is set, so only entries
// that could appear in the output are painted. Queries are O(log n)
// instead of a linear scan over every feature.
type FeatureIndex struct {
	rtree *rtreego.Rtree
}

// indexedEntry wraps an entry for R-tree storage, remembering its input
// position so query results can be returned in dataset order.
type indexedEntry struct {
	entry  ThematicEntry
	bounds Bounds
	pos    int
}

// Bounds implements rtreego.Spatial.
func (ie *indexedEntry) Bounds() rtreego.Rect {
	point := rtreego.Point{ie.bounds.MinLon, ie.bounds.MinLat}

	lonLength := ie.bounds.MaxLon - ie.bounds.MinLon
	latLength := ie.bounds.MaxLat - ie.bounds.MinLat

	// R-tree rectangles need non-zero dimensions; pad point features by
	// a small epsilon (~11 meters at the equator).
	const epsilon = 0.0001
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{lonLength, latLength})
	return rect
}

// NewFeatureIndex builds a spatial index over every entry of the dataset.
func NewFeatureIndex(ds ThematicDataset) *FeatureIndex {
	rtree := rtreego.NewTree(2, 25, 50)
	for i, e := range ds.Entries {
		rtree.Insert(&indexedEntry{
			entry:  e,
			bounds: e.Feature.Bounds(),
			pos:    i,
		})
	}
	return &FeatureIndex{rtree: rtree}
}

// Search returns every entry whose bounding box intersects the given
// bounds, in dataset order.
func (ix *FeatureIndex) Search(bounds Bounds) []ThematicEntry {
	point := rtreego.Point{bounds.MinLon, bounds.MinLat}
	lengths := []float64{
		bounds.MaxLon - bounds.MinLon,
		bounds.MaxLat - bounds.MinLat,
	}
	const epsilon = 0.0001
	for i := range lengths {
		if lengths[i] < epsilon {
			lengths[i] = epsilon
		}
	}
	queryRect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		return nil
	}

	spatials := ix.rtree.SearchIntersect(queryRect)
	hits := make([]*indexedEntry, 0, len(spatials))
	for _, s := range spatials {
		hits = append(hits, s.(*indexedEntry))
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	result := make([]ThematicEntry, len(hits))
	for i, hit := range hits {
		result[i] = hit.entry
	}
	return result
}

// Size returns the number of indexed entries.
func (ix *FeatureIndex) Size() int {
	return ix.rtree.Size()
}
