// Package identifier implements the 128-bit attribution token used across
// every cross-language call, topology transition, and security event: four
// stable string renderings over the same bytes, plus a deterministic
// "cryptonomic" derivation from (namespace, state id, event id).
package identifier

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/crypto/blake2b"
)

// ID is a 128-bit value type with no lifecycle of its own.
type ID [16]byte

// Format selects which of the four stable renderings to produce.
type Format int

const (
	FormatUUIDUpper Format = iota // uppercase hyphenated 8-4-4-4-12
	FormatGUIDLower                // lowercase hyphenated 8-4-4-4-12
	FormatCompact                  // 32 hex chars, no hyphens
	FormatCryptonomic               // "C-" + lowercase hyphenated
)

const cryptonomicPrefix = "C-"

// New draws a random v4 identifier using the gofrs/uuid generator.
func New() (ID, error) {
	u, err := uuid.NewV4()
	if err != nil {
		return ID{}, err
	}
	return ID(u), nil
}

// Derive computes a cryptonomic identifier deterministically from
// (namespace, state id, event id). Bytes 0..11 are a keyed BLAKE2b hash over
// state_id_be||event_id_be, keyed by namespace; bytes 12..15 come from a
// random v4 draw. Version and variant bits are then overwritten to the
// canonical UUID convention, which is why the state id only has 28 bits of
// effective address space once rendered.
func Derive(namespace string, stateID, eventID uint32) (ID, error) {
	h, err := blake2b.New(12, []byte(namespace))
	if err != nil {
		return ID{}, fmt.Errorf("identifier: derive: %w", err)
	}
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], stateID)
	binary.BigEndian.PutUint32(buf[4:8], eventID)
	if _, err := h.Write(buf[:]); err != nil {
		return ID{}, fmt.Errorf("identifier: derive: %w", err)
	}
	sum := h.Sum(nil)

	var id ID
	copy(id[0:12], sum)

	tail, err := uuid.NewV4()
	if err != nil {
		return ID{}, fmt.Errorf("identifier: derive: tail entropy: %w", err)
	}
	copy(id[12:16], tail[12:16])

	id.setVersionVariant()
	return id, nil
}

// setVersionVariant overwrites the version nibble (upper nibble of byte 6)
// and variant bits (upper two bits of byte 8) to the canonical values for a
// random UUID, per §4.3. Applied last, intentionally overwriting any
// derived state-id bits that land there.
func (id *ID) setVersionVariant() {
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80
}

// ParseFormat maps the "identifier.default_format" configuration string
// onto a Format, reporting false for anything unrecognized so callers can
// fall back to their own default rather than silently misrendering.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "uuid-upper":
		return FormatUUIDUpper, true
	case "guid-lower":
		return FormatGUIDLower, true
	case "compact":
		return FormatCompact, true
	case "cryptonomic":
		return FormatCryptonomic, true
	default:
		return 0, false
	}
}

// Render produces one of the four stable string forms.
func (id ID) Render(f Format) string {
	h := hex.EncodeToString(id[:])
	hyphenated := fmt.Sprintf("%s-%s-%s-%s-%s", h[0:8], h[8:12], h[12:16], h[16:20], h[20:32])
	switch f {
	case FormatUUIDUpper:
		return strings.ToUpper(hyphenated)
	case FormatGUIDLower:
		return hyphenated
	case FormatCompact:
		return h
	case FormatCryptonomic:
		return cryptonomicPrefix + hyphenated
	default:
		return hyphenated
	}
}

// Parse detects the rendering by length and delimiter pattern and recovers
// the original 128-bit value. Any other shape is InvalidFormat (the caller
// maps this to *errs.CoreError; this package stays dependency-light).
func Parse(s string) (ID, Format, error) {
	switch {
	case strings.HasPrefix(s, cryptonomicPrefix) && len(s) == len(cryptonomicPrefix)+36:
		body := s[len(cryptonomicPrefix):]
		id, err := parseHyphenated(body)
		if err != nil {
			return ID{}, 0, err
		}
		return id, FormatCryptonomic, nil
	case len(s) == 36:
		id, err := parseHyphenated(s)
		if err != nil {
			return ID{}, 0, err
		}
		if s == strings.ToUpper(s) {
			return id, FormatUUIDUpper, nil
		}
		return id, FormatGUIDLower, nil
	case len(s) == 32:
		raw, err := hex.DecodeString(s)
		if err != nil || len(raw) != 16 {
			return ID{}, 0, errInvalidFormat(s)
		}
		var id ID
		copy(id[:], raw)
		return id, FormatCompact, nil
	default:
		return ID{}, 0, errInvalidFormat(s)
	}
}

func parseHyphenated(s string) (ID, error) {
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return ID{}, errInvalidFormat(s)
	}
	hexStr := s[0:8] + s[9:13] + s[14:18] + s[19:23] + s[24:36]
	raw, err := hex.DecodeString(strings.ToLower(hexStr))
	if err != nil || len(raw) != 16 {
		return ID{}, errInvalidFormat(s)
	}
	var id ID
	copy(id[:], raw)
	return id, nil
}

// FormatError is returned when a string does not match any of the four
// recognized renderings.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("identifier: invalid format: %q", e.Input)
}

func errInvalidFormat(s string) error {
	return &FormatError{Input: s}
}

// VersionVariant extracts the version nibble and the two variant bits for
// inspection, e.g. in tests that assert the canonical values were set.
func (id ID) VersionVariant() (version uint8, variant uint8) {
	version = id[6] >> 4
	variant = id[8] >> 6
	return
}
