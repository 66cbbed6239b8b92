/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: approx.go
Description: Incremental Approx partition for the Akaylee Learner observation
table. Rows are first grouped into same-outputs buckets (a cheap signature
over derived boolean outputs), then refined pairwise by counter-value
compatibility within each bucket. Recomputation touches only the buckets of
rows whose classification inputs changed since the last pass.
*/

package table

import (
	"sort"
	"strconv"
	"strings"
)

// bucket groups the rows whose derived boolean outputs are identical across
// every registered suffix. A row's bucket changes as cells are learned; the
// row id stays stable and the bucket id is the mutable second level.
type bucket struct {
	id      int
	sig     string
	members map[int]struct{}
}

// approxClass is an interned Approx set: the short-prefix rows mutually
// output-identical and counter-compatible with some row. Classes are interned
// by member signature so equal sets share one id and one stable canonical
// representative (the lowest member id).
type approxClass struct {
	id        int
	members   []int // short-prefix row ids, ascending
	canonical int
}

// outputsSignature renders the row's derived outputs as a bucket key.
func (t *Table) outputsSignature(r *Row) string {
	b := make([]byte, len(r.cells))
	for i, nid := range r.cells {
		if t.tree.Cell(nid).Accepted {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// ensureBucket returns the bucket for a signature, creating it if needed.
func (t *Table) ensureBucket(sig string) *bucket {
	if id, ok := t.bucketIndex[sig]; ok {
		return t.buckets[id]
	}
	b := &bucket{id: len(t.buckets), sig: sig, members: make(map[int]struct{})}
	t.buckets = append(t.buckets, b)
	t.bucketIndex[sig] = b.id
	return b
}

// moveRowToBucket re-keys a row whose outputs signature changed. Both the
// vacated and the receiving bucket must be recomputed.
func (t *Table) moveRowToBucket(r *Row, dst *bucket, dirtyBuckets map[int]struct{}) {
	if r.bucketID >= 0 {
		delete(t.buckets[r.bucketID].members, r.id)
		dirtyBuckets[r.bucketID] = struct{}{}
	}
	dst.members[r.id] = struct{}{}
	r.bucketID = dst.id
	dirtyBuckets[dst.id] = struct{}{}
}

// counterCompatible reports whether two rows agree on every classical suffix
// whose counter value is known on both sides. Outputs are not compared here;
// rows are only compared within one bucket.
func (t *Table) counterCompatible(a, b *Row) bool {
	for i := range t.suffixes {
		if !t.suffixClassical[i] {
			continue
		}
		ca, cb := t.tree.Cell(a.cells[i]), t.tree.Cell(b.cells[i])
		if ca.CounterKnown && cb.CounterKnown && ca.CounterValue != cb.CounterValue {
			return false
		}
	}
	return true
}

// internClass returns the stable class id for a sorted member set, NoClass
// for the empty set.
func (t *Table) internClass(members []int) int {
	if len(members) == 0 {
		return NoClass
	}
	var sb strings.Builder
	for i, m := range members {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(m))
	}
	sig := sb.String()
	if id, ok := t.classIndex[sig]; ok {
		return id
	}
	c := &approxClass{id: len(t.classes), members: members, canonical: members[0]}
	t.classes = append(t.classes, c)
	t.classIndex[sig] = c.id
	return c.id
}

// updateApprox recomputes the Approx class of every row in a bucket touched
// since the last pass. Rows in untouched buckets keep their class unchanged.
func (t *Table) updateApprox() {
	if len(t.dirty) == 0 {
		return
	}
	dirtyBuckets := make(map[int]struct{})
	dirtyRows := make([]int, 0, len(t.dirty))
	for id := range t.dirty {
		dirtyRows = append(dirtyRows, id)
	}
	sort.Ints(dirtyRows)
	for _, id := range dirtyRows {
		r := t.rows[id]
		sig := t.outputsSignature(r)
		if r.bucketID >= 0 && t.buckets[r.bucketID].sig == sig {
			dirtyBuckets[r.bucketID] = struct{}{}
			continue
		}
		t.moveRowToBucket(r, t.ensureBucket(sig), dirtyBuckets)
	}
	t.dirty = make(map[int]struct{})

	bucketIDs := make([]int, 0, len(dirtyBuckets))
	for id := range dirtyBuckets {
		bucketIDs = append(bucketIDs, id)
	}
	sort.Ints(bucketIDs)
	for _, bid := range bucketIDs {
		t.recomputeBucket(t.buckets[bid])
	}
}

// recomputeBucket reclassifies every row keyed to the bucket: a row's Approx
// set is the bucket's short-prefix rows counter-compatible with it.
func (t *Table) recomputeBucket(b *bucket) {
	ids := make([]int, 0, len(b.members))
	for id := range b.members {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var shorts []*Row
	for _, id := range ids {
		if t.rows[id].short {
			shorts = append(shorts, t.rows[id])
		}
	}
	for _, id := range ids {
		r := t.rows[id]
		var members []int
		for _, s := range shorts {
			if t.counterCompatible(r, s) {
				members = append(members, s.id)
			}
		}
		r.classID = t.internClass(members)
	}
}

// markAllDirty forces a global Approx recomputation on the next update.
// Used after a counter-limit raise, when previously-derived cells may have
// flipped anywhere in the table.
func (t *Table) markAllDirty() {
	for _, r := range t.rows {
		t.dirty[r.id] = struct{}{}
	}
}
