package property

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"minimal valid", Record{ID: 1}, false},
		{
			"fully populated valid",
			Record{
				ID:                 2,
				PropertyType:       "apartment",
				FloorAreaM2:        FloatPtr(85),
				NumRooms:           IntPtr(3),
				NumBathrooms:       IntPtr(1),
				CrimeRate:          FloatPtr(2.4),
				Price:              FloatPtr(250000),
				Income:             FloatPtr(50000),
				PricePerM2:         FloatPtr(2941),
				PriceToIncomeRatio: FloatPtr(5),
			},
			false,
		},
		{"zero id", Record{ID: 0}, true},
		{"negative id", Record{ID: -4}, true},
		{"negative floor area", Record{ID: 3, FloorAreaM2: FloatPtr(-1)}, true},
		{"negative rooms", Record{ID: 4, NumRooms: IntPtr(-2)}, true},
		{"negative bathrooms", Record{ID: 5, NumBathrooms: IntPtr(-1)}, true},
		{"negative crime rate", Record{ID: 6, CrimeRate: FloatPtr(-0.1)}, true},
		{"zero price", Record{ID: 7, Price: FloatPtr(0)}, true},
		{"zero income", Record{ID: 8, Income: FloatPtr(0)}, true},
		{"negative price per m2", Record{ID: 9, PricePerM2: FloatPtr(-10)}, true},
		{"negative PTI", Record{ID: 10, PriceToIncomeRatio: FloatPtr(-1)}, true},
		{"zero optional counts are fine", Record{ID: 11, NumRooms: IntPtr(0), FloorAreaM2: FloatPtr(0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrMalformedRecord) {
					t.Errorf("expected ErrMalformedRecord, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
