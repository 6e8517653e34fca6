// Package simindex provides an immutable cosine-similarity nearest
// neighbor index over property feature vectors. An index is built once
// from a full batch of vectors under one profile version; "updating" means
// building a new index and atomically swapping the reference held by
// callers. Queries are read-only and safe for concurrent use.
package simindex

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/vectorize"
)

// Index errors.
var (
	// ErrNotFound indicates a property identifier unknown to the index.
	ErrNotFound = errors.New("property not found in similarity index")

	// ErrVersionMismatch indicates profile-generation skew between a
	// vector (or caller) and the index.
	ErrVersionMismatch = errors.New("profile version mismatch")

	// ErrEmptyIndex indicates Build was called with no vectors.
	ErrEmptyIndex = errors.New("cannot build index from zero vectors")

	// ErrRaggedVectors indicates vectors of unequal length at build time.
	ErrRaggedVectors = errors.New("feature vectors have inconsistent length")
)

// Neighbor is one nearest-neighbor result.
type Neighbor struct {
	ID         int64   `json:"id"`
	Similarity float64 `json:"similarity"`
}

// Index is the immutable nearest-neighbor structure. Fields are fixed at
// build time and never written afterwards.
type Index struct {
	version string
	dims    int
	ids     []int64 // ascending
	rows    [][]float64
	norms   []float64
	byID    map[int64]int
}

// Build constructs an index from the full id→vector mapping produced under
// one profile version. Every vector must carry the same version tag and
// the same length; violations fail the build rather than produce garbage
// similarities.
func Build(version string, vectors map[int64]vectorize.Vector) (*Index, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyIndex
	}

	ids := make([]int64, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	idx := &Index{
		version: version,
		dims:    len(vectors[ids[0]].Values),
		ids:     ids,
		rows:    make([][]float64, len(ids)),
		norms:   make([]float64, len(ids)),
		byID:    make(map[int64]int, len(ids)),
	}

	for i, id := range ids {
		v := vectors[id]
		if v.Version != version {
			return nil, fmt.Errorf("%w: vector %d built under %q, index is %q",
				ErrVersionMismatch, id, v.Version, version)
		}
		if len(v.Values) != idx.dims {
			return nil, fmt.Errorf("%w: vector %d has %d dims, expected %d",
				ErrRaggedVectors, id, len(v.Values), idx.dims)
		}
		row := make([]float64, idx.dims)
		copy(row, v.Values)
		idx.rows[i] = row
		idx.norms[i] = norm(row)
		idx.byID[id] = i
	}
	return idx, nil
}

// Version returns the profile version the index was built under.
func (idx *Index) Version() string { return idx.version }

// Len returns the number of indexed properties.
func (idx *Index) Len() int { return len(idx.ids) }

// Contains reports whether the identifier is indexed.
func (idx *Index) Contains(id int64) bool {
	_, ok := idx.byID[id]
	return ok
}

// Query returns up to k nearest neighbors of the identified property by
// cosine similarity, excluding the property itself. Similarity ties break
// by ascending identifier. Unknown identifiers fail with ErrNotFound.
func (idx *Index) Query(id int64, k int) ([]Neighbor, error) {
	row, ok := idx.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return idx.nearest(idx.rows[row], idx.norms[row], k, row), nil
}

// QueryVector returns up to k nearest neighbors of an arbitrary query
// vector, e.g. a synthetic vector built from user preferences. The vector
// must be built under the index's profile version; skew fails with
// ErrVersionMismatch.
func (idx *Index) QueryVector(v vectorize.Vector, k int) ([]Neighbor, error) {
	if v.Version != idx.version {
		return nil, fmt.Errorf("%w: query vector built under %q, index is %q",
			ErrVersionMismatch, v.Version, idx.version)
	}
	if len(v.Values) != idx.dims {
		return nil, fmt.Errorf("%w: query vector has %d dims, expected %d",
			ErrRaggedVectors, len(v.Values), idx.dims)
	}
	return idx.nearest(v.Values, norm(v.Values), k, -1), nil
}

// nearest scans all rows, excluding excludeRow (-1 for none), and returns
// the top k by (similarity desc, id asc).
func (idx *Index) nearest(query []float64, queryNorm float64, k int, excludeRow int) []Neighbor {
	if k <= 0 {
		return nil
	}
	candidates := make([]Neighbor, 0, len(idx.ids))
	for i, row := range idx.rows {
		if i == excludeRow {
			continue
		}
		candidates = append(candidates, Neighbor{
			ID:         idx.ids[i],
			Similarity: cosine(query, queryNorm, row, idx.norms[i]),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].ID < candidates[j].ID
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// cosine computes cosine similarity given precomputed norms. A zero-norm
// operand yields 0 similarity.
func cosine(a []float64, na float64, b []float64, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (na * nb)
}

func norm(v []float64) float64 {
	var ss float64
	for _, x := range v {
		ss += x * x
	}
	return math.Sqrt(ss)
}
