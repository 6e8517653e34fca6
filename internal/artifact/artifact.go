// Package artifact persists engine artifacts (vectorization profile +
// similarity index) as versioned, self-describing CBOR envelopes, and
// provides filesystem and S3-compatible object stores for them.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/profile"
	"github.com/amr-mohamed13/SmartLivingAdvisor/internal/simindex"
)

// FormatVersion is the current envelope format. Readers reject unknown
// formats instead of guessing at layout.
const FormatVersion = 1

// Artifact errors.
var (
	ErrInvalidEnvelope   = errors.New("invalid artifact envelope")
	ErrUnsupportedFormat = errors.New("unsupported artifact format version")
)

// Envelope bundles one engine generation's persisted artifacts. The
// profile version is duplicated at the top level so consumers can check
// generation skew before touching the payload.
type Envelope struct {
	FormatVersion  int                `cbor:"format_version"`
	ProfileVersion string             `cbor:"profile_version"`
	CreatedAt      time.Time          `cbor:"created_at"`
	Profile        *profile.Profile   `cbor:"profile"`
	Index          *simindex.Snapshot `cbor:"index"`
}

// NewEnvelope wraps a profile and index snapshot. The index must have
// been built under the profile's version; skew fails with
// simindex.ErrVersionMismatch rather than persisting a poisoned artifact.
func NewEnvelope(prof *profile.Profile, index *simindex.Snapshot) (*Envelope, error) {
	if prof == nil || index == nil {
		return nil, ErrInvalidEnvelope
	}
	if prof.Version != index.Version {
		return nil, fmt.Errorf("%w: profile %q vs index %q",
			simindex.ErrVersionMismatch, prof.Version, index.Version)
	}
	return &Envelope{
		FormatVersion:  FormatVersion,
		ProfileVersion: prof.Version,
		CreatedAt:      time.Now().UTC(),
		Profile:        prof,
		Index:          index,
	}, nil
}

// Encode serializes the envelope to CBOR.
func Encode(env *Envelope) ([]byte, error) {
	var buf bytes.Buffer
	if err := cbor.NewEncoder(&buf).Encode(env); err != nil {
		return nil, fmt.Errorf("failed to encode artifact envelope: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes and validates an artifact envelope. It fails loudly
// on an unknown format version or on profile/index version skew; a
// mismatched artifact must never silently produce garbage similarities.
func Decode(data []byte) (*Envelope, error) {
	if len(data) == 0 {
		return nil, ErrInvalidEnvelope
	}
	var env Envelope
	if err := cbor.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if env.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, env.FormatVersion)
	}
	if env.Profile == nil || env.Index == nil || env.ProfileVersion == "" {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidEnvelope)
	}
	if env.ProfileVersion != env.Profile.Version || env.ProfileVersion != env.Index.Version {
		return nil, fmt.Errorf("%w: envelope %q, profile %q, index %q",
			simindex.ErrVersionMismatch, env.ProfileVersion, env.Profile.Version, env.Index.Version)
	}
	env.Profile.Reindex()
	return &env, nil
}
