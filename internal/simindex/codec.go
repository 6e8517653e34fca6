package simindex

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrInvalidSnapshot indicates CBOR data that does not decode to a usable
// index snapshot.
var ErrInvalidSnapshot = errors.New("invalid index snapshot")

// Snapshot is the serializable form of an index: the profile version, the
// ascending identifier list, and the row-major vector matrix. Norms and
// lookup maps are derived and rebuilt on decode.
type Snapshot struct {
	Version string    `cbor:"version"`
	Dims    int       `cbor:"dims"`
	IDs     []int64   `cbor:"ids"`
	Rows    []float64 `cbor:"rows"` // row-major, len(IDs)*Dims
}

// Snapshot captures the index in serializable form.
func (idx *Index) Snapshot() *Snapshot {
	rows := make([]float64, 0, len(idx.ids)*idx.dims)
	for _, row := range idx.rows {
		rows = append(rows, row...)
	}
	ids := make([]int64, len(idx.ids))
	copy(ids, idx.ids)
	return &Snapshot{Version: idx.version, Dims: idx.dims, IDs: ids, Rows: rows}
}

// FromSnapshot reconstructs an immutable index from its serialized form.
// The snapshot's layout is validated before any derived state is built.
func FromSnapshot(s *Snapshot) (*Index, error) {
	if s == nil || len(s.IDs) == 0 || s.Dims <= 0 {
		return nil, ErrInvalidSnapshot
	}
	if s.Version == "" {
		return nil, fmt.Errorf("%w: missing version tag", ErrInvalidSnapshot)
	}
	if len(s.Rows) != len(s.IDs)*s.Dims {
		return nil, fmt.Errorf("%w: %d values for %d ids x %d dims",
			ErrInvalidSnapshot, len(s.Rows), len(s.IDs), s.Dims)
	}
	idx := &Index{
		version: s.Version,
		dims:    s.Dims,
		ids:     make([]int64, len(s.IDs)),
		rows:    make([][]float64, len(s.IDs)),
		norms:   make([]float64, len(s.IDs)),
		byID:    make(map[int64]int, len(s.IDs)),
	}
	copy(idx.ids, s.IDs)
	for i, id := range idx.ids {
		row := make([]float64, s.Dims)
		copy(row, s.Rows[i*s.Dims:(i+1)*s.Dims])
		idx.rows[i] = row
		idx.norms[i] = norm(row)
		idx.byID[id] = i
	}
	return idx, nil
}

// EncodeSnapshot serializes an index snapshot to CBOR.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := cbor.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode index snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot deserializes a CBOR index snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, ErrInvalidSnapshot
	}
	var s Snapshot
	if err := cbor.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return &s, nil
}
