package services

import (
	"time"

	"github.com/custodia-labs/shelf/internal/core/domain"
)

// idKey identifies a product across re-exports.
type idKey struct {
	sourceID int
	title    string
}

// idAllocator hands out catalog ids that are unique within one run.
type idAllocator struct {
	used     map[int64]bool
	previous map[idKey]int64
	base     int64
	counter  int64
}

// newIDAllocator remembers the ids a previous catalog gave each
// (source id, title) pair. Synthesised ids start at now in milliseconds.
func newIDAllocator(previous []domain.Product, now time.Time) *idAllocator {
	a := &idAllocator{
		used:     make(map[int64]bool),
		previous: make(map[idKey]int64, len(previous)),
		base:     now.Unix() * 1000,
	}
	for _, p := range previous {
		key := idKey{sourceID: p.SourceID, title: p.Title}
		if _, ok := a.previous[key]; !ok {
			a.previous[key] = p.ID
		}
	}
	return a
}

// assignAll returns one id per key, in key order. Ids from the previous
// catalog are claimed first, so a record keeps its id across runs even
// when another record now carries that number as its source id. Records
// without a previous id take their source id when it is free, and a
// synthesised id otherwise.
func (a *idAllocator) assignAll(keys []idKey) []int64 {
	ids := make([]int64, len(keys))

	for i, k := range keys {
		if id, ok := a.previous[k]; ok && id > 0 && !a.used[id] {
			ids[i] = a.take(id)
		}
	}

	for i, k := range keys {
		if ids[i] != 0 {
			continue
		}
		if id := int64(k.sourceID); k.sourceID > 0 && !a.used[id] {
			ids[i] = a.take(id)
		}
	}

	for i := range keys {
		if ids[i] == 0 {
			ids[i] = a.synthesise()
		}
	}
	return ids
}

func (a *idAllocator) take(id int64) int64 {
	a.used[id] = true
	return id
}

func (a *idAllocator) synthesise() int64 {
	for {
		a.counter++
		if id := a.base + a.counter; !a.used[id] {
			return a.take(id)
		}
	}
}
