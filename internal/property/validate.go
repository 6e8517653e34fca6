package property

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord indicates a record that is structurally invalid: a
// missing identifier, or a present field with an impossible value. Raised
// at ingestion; missing optional fields are never malformed.
var ErrMalformedRecord = errors.New("malformed property record")

// Validate checks structural invariants on a record. Absent optional
// fields pass; present fields must be in-range.
func (r *Record) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: missing identifier", ErrMalformedRecord)
	}
	if r.FloorAreaM2 != nil && *r.FloorAreaM2 < 0 {
		return fmt.Errorf("%w: id %d: negative floor area %.2f", ErrMalformedRecord, r.ID, *r.FloorAreaM2)
	}
	if r.NumRooms != nil && *r.NumRooms < 0 {
		return fmt.Errorf("%w: id %d: negative room count %d", ErrMalformedRecord, r.ID, *r.NumRooms)
	}
	if r.NumBathrooms != nil && *r.NumBathrooms < 0 {
		return fmt.Errorf("%w: id %d: negative bathroom count %d", ErrMalformedRecord, r.ID, *r.NumBathrooms)
	}
	if r.CrimeRate != nil && *r.CrimeRate < 0 {
		return fmt.Errorf("%w: id %d: negative crime rate %.4f", ErrMalformedRecord, r.ID, *r.CrimeRate)
	}
	if r.Price != nil && *r.Price <= 0 {
		return fmt.Errorf("%w: id %d: non-positive price %.2f", ErrMalformedRecord, r.ID, *r.Price)
	}
	if r.Income != nil && *r.Income <= 0 {
		return fmt.Errorf("%w: id %d: non-positive income %.2f", ErrMalformedRecord, r.ID, *r.Income)
	}
	if r.PricePerM2 != nil && *r.PricePerM2 < 0 {
		return fmt.Errorf("%w: id %d: negative price per m2 %.2f", ErrMalformedRecord, r.ID, *r.PricePerM2)
	}
	if r.PriceToIncomeRatio != nil && *r.PriceToIncomeRatio < 0 {
		return fmt.Errorf("%w: id %d: negative price-to-income ratio %.4f", ErrMalformedRecord, r.ID, *r.PriceToIncomeRatio)
	}
	return nil
}
