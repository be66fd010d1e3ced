// Package flakeid generates and parses 64-bit snowflakes: a millisecond
// timestamp measured from 2022-01-01 UTC, a per-millisecond increment, a
// server id and a worker id packed big-endian into 8 bytes. The byte order
// makes the unsigned value of an id grow with time, so ids from one Factory
// sort in creation order.
package flakeid

import (
	"bytes"
	"encoding/binary"
	"time"
)

// Snowflake is a decoded identifier together with its binary form.
type Snowflake struct {
	Fields
	raw [Size]byte
}

func newSnowflake(f Fields, raw [Size]byte) Snowflake {
	return Snowflake{Fields: f, raw: raw}
}

// Bytes returns a copy of the 8-byte big-endian form.
func (s Snowflake) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, s.raw[:])
	return b
}

func (s Snowflake) Array() [Size]byte { return s.raw }

func (s Snowflake) Uint64() uint64 { return beUint64(s.raw) }

// Decimal is the base-10 text of Uint64.
func (s Snowflake) Decimal() string {
	v, _ := EncodeText(s.raw, EncodingDecimal)
	return v
}

// Hex is 16 lowercase hex digits.
func (s Snowflake) Hex() string {
	v, _ := EncodeText(s.raw, EncodingHex)
	return v
}

func (s Snowflake) Base62() string {
	v, _ := EncodeText(s.raw, EncodingBase62)
	return v
}

// Base64 is the 11-character sortable form.
func (s Snowflake) Base64() string {
	v, _ := EncodeText(s.raw, EncodingBase64)
	return v
}

func (s Snowflake) Encode(enc Encoding) (string, error) {
	return EncodeText(s.raw, enc)
}

func (s Snowflake) String() string { return s.Decimal() }

// MarshalText emits the decimal form, which survives JSON number precision limits as a string.
func (s Snowflake) MarshalText() ([]byte, error) {
	return []byte(s.Decimal()), nil
}

// Time is the creation time in UTC.
func (s Snowflake) Time() time.Time {
	return time.UnixMilli(s.Timestamp).UTC()
}

// Compare orders by the binary form: -1, 0 or 1.
func (s Snowflake) Compare(other Snowflake) int {
	return bytes.Compare(s.raw[:], other.raw[:])
}

func beUint64(b [Size]byte) uint64 {
	return binary.BigEndian.Uint64(b[:])
}

func putUint64(v uint64) [Size]byte {
	var b [Size]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b
}
