package profile

import (
	"errors"
	"reflect"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	original := boundedProfile()

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.Version != original.Version {
		t.Errorf("version: expected %q, got %q", original.Version, decoded.Version)
	}
	if !reflect.DeepEqual(decoded.Categories, original.Categories) {
		t.Errorf("categories: expected %v, got %v", original.Categories, decoded.Categories)
	}
	if !reflect.DeepEqual(decoded.AmenityVocab, original.AmenityVocab) {
		t.Errorf("vocabulary: expected %v, got %v", original.AmenityVocab, decoded.AmenityVocab)
	}
	if !reflect.DeepEqual(decoded.Bounds, original.Bounds) {
		t.Errorf("bounds: expected %v, got %v", original.Bounds, decoded.Bounds)
	}
	if !reflect.DeepEqual(decoded.Scaler, original.Scaler) {
		t.Errorf("scaler: expected %v, got %v", original.Scaler, decoded.Scaler)
	}

	// Derived indexes must be rebuilt, not serialized.
	if got := decoded.CategorySlot("villa"); got != 1 {
		t.Errorf("decoded profile lost category index: slot %d", got)
	}
	if got := decoded.VocabSlot("pool"); got != 1 {
		t.Errorf("decoded profile lost vocab index: slot %d", got)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrInvalidArtifact) {
		t.Errorf("empty input: expected ErrInvalidArtifact, got %v", err)
	}
	if _, err := Decode([]byte{0xff, 0x00, 0x13}); !errors.Is(err, ErrInvalidArtifact) {
		t.Errorf("garbage input: expected ErrInvalidArtifact, got %v", err)
	}
}

func TestDecodeRejectsMissingVersion(t *testing.T) {
	p := boundedProfile()
	p.Version = ""
	data, err := Encode(p)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := Decode(data); !errors.Is(err, ErrMissingVersion) {
		t.Errorf("expected ErrMissingVersion, got %v", err)
	}
}
