package property

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"plain words", "gym pool", []string{"gym", "pool"}},
		{"uppercase lowered", "Gym POOL", []string{"gym", "pool"}},
		{"list literal", "['Gym', 'Swimming_Pool']", []string{"gym", "swimming_pool"}},
		{"double quoted", `["gym","parking"]`, []string{"gym", "parking"}},
		{"duplicates dropped first-seen order", "pool gym pool", []string{"pool", "gym"}},
		{"commas only", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.raw)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"yes", "Yes", "YES", "true", "True", "1", "y", "T", " yes "}
	for _, s := range truthy {
		if !ParseBool(s) {
			t.Errorf("ParseBool(%q): expected true", s)
		}
	}
	falsy := []string{"", "no", "No", "false", "0", "n", "f", "maybe", "2"}
	for _, s := range falsy {
		if ParseBool(s) {
			t.Errorf("ParseBool(%q): expected false", s)
		}
	}
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		raw      string
		expected Condition
	}{
		{"new", ConditionNew},
		{"New", ConditionNew},
		{" RENOVATED ", ConditionRenovated},
		{"old", ConditionOld},
		{"", ConditionUnknown},
		{"unknown", ConditionUnknown},
		{"fixer-upper", ConditionUnknown},
	}

	for _, tt := range tests {
		if got := ParseCondition(tt.raw); got != tt.expected {
			t.Errorf("ParseCondition(%q): expected %s, got %s", tt.raw, tt.expected, got)
		}
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"Apartment", "apartment"},
		{" Villa ", "villa"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := NormalizeType(tt.raw); got != tt.expected {
			t.Errorf("NormalizeType(%q): expected %q, got %q", tt.raw, tt.expected, got)
		}
	}
}

func TestPTIRatio(t *testing.T) {
	tests := []struct {
		name     string
		rec      Record
		expected float64
		ok       bool
	}{
		{"explicit column wins", Record{PriceToIncomeRatio: FloatPtr(7.5), Price: FloatPtr(100), Income: FloatPtr(1)}, 7.5, true},
		{"derived from price and income", Record{Price: FloatPtr(300000), Income: FloatPtr(60000)}, 5, true},
		{"zero income blocks derivation", Record{Price: FloatPtr(300000), Income: FloatPtr(0)}, 0, false},
		{"missing everything", Record{}, 0, false},
		{"price alone insufficient", Record{Price: FloatPtr(1000)}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rec.PTIRatio()
			if ok != tt.ok || got != tt.expected {
				t.Errorf("expected (%f, %t), got (%f, %t)", tt.expected, tt.ok, got, ok)
			}
		})
	}
}
