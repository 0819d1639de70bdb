// internal/service/position/index.go

package position

import (
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/geo"
)

const (
	indexTolerance   = 0.0001
	indexMinChildren = 25
	indexMaxChildren = 50
)

// liveEntry wraps one actor's last known position for R-tree indexing
type liveEntry struct {
	id   string
	lat  float64
	lng  float64
	rect *rtreego.Rect
}

func (e *liveEntry) Bounds() *rtreego.Rect {
	return e.rect
}

// LiveIndex is a thread-safe in-memory R-tree over actor positions. It is
// refreshed on every position update and serves reach estimation and area
// counting without a store round trip. The store remains the source of
// truth; the index is warmed from it at process start.
type LiveIndex struct {
	mu      sync.RWMutex
	tree    *rtreego.Rtree
	entries map[string]*liveEntry
}

// NewLiveIndex creates an empty live position index
func NewLiveIndex() *LiveIndex {
	return &LiveIndex{
		tree:    rtreego.NewTree(2, indexMinChildren, indexMaxChildren),
		entries: make(map[string]*liveEntry),
	}
}

// Upsert replaces the indexed position of an actor
func (x *LiveIndex) Upsert(id string, lat, lng float64) {
	point := rtreego.Point{lat, lng}
	entry := &liveEntry{
		id:   id,
		lat:  lat,
		lng:  lng,
		rect: point.ToRect(indexTolerance),
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if old, ok := x.entries[id]; ok {
		x.tree.Delete(old)
	}
	x.tree.Insert(entry)
	x.entries[id] = entry
}

// Remove drops an actor from the index
func (x *LiveIndex) Remove(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if old, ok := x.entries[id]; ok {
		x.tree.Delete(old)
		delete(x.entries, id)
	}
}

// CountWithin counts indexed actors within radiusKm of the center. The
// R-tree is queried with the bounding box; the exact haversine check
// decides membership.
func (x *LiveIndex) CountWithin(lat, lng, radiusKm float64) (int, error) {
	box, err := geo.NewBoundingBox(lat, lng, radiusKm)
	if err != nil {
		return 0, err
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{box.MinLat, box.MinLng},
		[]float64{box.MaxLat - box.MinLat, box.MaxLng - box.MinLng},
	)
	if err != nil {
		return 0, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	count := 0
	for _, item := range x.tree.SearchIntersect(rect) {
		entry, ok := item.(*liveEntry)
		if !ok {
			continue
		}
		if geo.Haversine(lat, lng, entry.lat, entry.lng) <= radiusKm {
			count++
		}
	}

	return count, nil
}

// Size returns the number of indexed actors
func (x *LiveIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return len(x.entries)
}
