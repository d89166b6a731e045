package identifier

import "testing"

func TestRenderParseRoundTrip(t *testing.T) {
	id, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, f := range []Format{FormatUUIDUpper, FormatGUIDLower, FormatCompact, FormatCryptonomic} {
		rendered := id.Render(f)
		got, gotFormat, err := Parse(rendered)
		if err != nil {
			t.Fatalf("Parse(%q): %v", rendered, err)
		}
		if got != id {
			t.Fatalf("round trip mismatch for format %v: got %x want %x", f, got, id)
		}
		if gotFormat != f {
			t.Fatalf("format mismatch: got %v want %v", gotFormat, f)
		}
	}
}

func TestDeriveIsDeterministicInAddressedBytes(t *testing.T) {
	a, err := Derive("bridge.py", 10, 20)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	b, err := Derive("bridge.py", 10, 20)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	// Bytes 0..5 are unaffected by version/variant overwrite and must match
	// exactly across independent derivations with the same inputs.
	if [6]byte(a[0:6]) != [6]byte(b[0:6]) {
		t.Fatalf("derivation not deterministic: %x vs %x", a, b)
	}
	version, variant := a.VersionVariant()
	if version != 4 {
		t.Fatalf("version nibble = %d, want 4", version)
	}
	if variant != 0b10 {
		t.Fatalf("variant bits = %b, want 10", variant)
	}
}

func TestParseScenario7(t *testing.T) {
	id, f, err := Parse("C-01234567-89ab-4cde-8f01-234567890abc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f != FormatCryptonomic {
		t.Fatalf("format = %v, want FormatCryptonomic", f)
	}
	version, variant := id.VersionVariant()
	if version != 4 {
		t.Fatalf("version = %d, want 4", version)
	}
	if variant != 0b10 {
		t.Fatalf("variant = %b, want 10", variant)
	}
}

func TestParseInvalidFormat(t *testing.T) {
	if _, _, err := Parse("not-an-id"); err == nil {
		t.Fatal("expected InvalidFormat error")
	}
}
