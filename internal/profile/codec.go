package profile

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Profile artifact codec errors.
var (
	ErrInvalidArtifact = errors.New("invalid profile artifact")
	ErrMissingVersion  = errors.New("profile artifact missing version tag")
)

// Encode serializes a profile to CBOR. The encoding is self-describing:
// the version tag and both vocabularies travel with the statistics so a
// consumer can detect generation skew before using the profile.
func Encode(p *Profile) ([]byte, error) {
	var buf bytes.Buffer
	enc := cbor.NewEncoder(&buf)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes a CBOR profile artifact and rebuilds the derived
// lookup indexes. A missing version tag fails loudly: an untagged profile
// cannot participate in version-mismatch checks.
func Decode(data []byte) (*Profile, error) {
	if len(data) == 0 {
		return nil, ErrInvalidArtifact
	}
	var p Profile
	dec := cbor.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if p.Version == "" {
		return nil, ErrMissingVersion
	}
	p.buildIndexes()
	return &p, nil
}
