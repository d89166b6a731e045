// Package ffi implements the FFI gateway and bridge registry (§4.1): a
// star-topology dispatcher where each host language is represented by one
// bridge, and all cross-language calls transit the gateway.
package ffi

// Kind identifies which variant a Value currently holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindFloat64
	KindString
	KindBytes
	KindArray
	KindHandle
)

// Value is a polymorphic argument/result payload over the closed variant set
// of §4.1: null, bool, int64, float64, string, bytes, homogeneous array, and
// an opaque bridge-owned handle.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	bytes  []byte
	arr    []Value
	handle any
}

func Null() Value                 { return Value{kind: KindNull} }
func Bool(v bool) Value           { return Value{kind: KindBool, b: v} }
func Int64(v int64) Value         { return Value{kind: KindInt64, i: v} }
func Float64(v float64) Value     { return Value{kind: KindFloat64, f: v} }
func String(v string) Value       { return Value{kind: KindString, s: v} }
func Bytes(v []byte) Value        { return Value{kind: KindBytes, bytes: append([]byte(nil), v...)} }
func Array(v []Value) Value       { return Value{kind: KindArray, arr: append([]Value(nil), v...)} }
func Handle(v any) Value          { return Value{kind: KindHandle, handle: v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) Bool() (bool, bool)       { return v.b, v.kind == KindBool }
func (v Value) Int64() (int64, bool)     { return v.i, v.kind == KindInt64 }
func (v Value) Float64() (float64, bool) { return v.f, v.kind == KindFloat64 }
func (v Value) String() (string, bool)   { return v.s, v.kind == KindString }
func (v Value) Bytes() ([]byte, bool)    { return v.bytes, v.kind == KindBytes }
func (v Value) Array() ([]Value, bool)   { return v.arr, v.kind == KindArray }
func (v Value) Handle() (any, bool)      { return v.handle, v.kind == KindHandle }

// Equal reports deep value equality across all non-opaque variants; handle
// variants compare by identity (==) only.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt64:
		return v.i == other.i
	case KindFloat64:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindBytes:
		if len(v.bytes) != len(other.bytes) {
			return false
		}
		for i := range v.bytes {
			if v.bytes[i] != other.bytes[i] {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindHandle:
		return v.handle == other.handle
	default:
		return false
	}
}
