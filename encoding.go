package flakeid

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/eknkc/basex"

	"github.com/lypee/flakeid/common"
)

// Encoding names a textual form of a snowflake.
type Encoding string

const (
	EncodingNone    Encoding = ""
	EncodingDecimal Encoding = "decimal"
	EncodingHex     Encoding = "hex"
	EncodingBase62  Encoding = "base62"
	EncodingBase64  Encoding = "base64"
)

// Encodings lists every textual form in a stable order.
var Encodings = []Encoding{EncodingDecimal, EncodingHex, EncodingBase62, EncodingBase64}

const (
	alphabet62 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// ascending ASCII order, so encoded strings sort like the ids they encode
	alphabet64 = "0123456789=ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

	base64Len = 11 // ceil(64 / 6)
)

var (
	base62  *basex.Encoding
	index64 [256]int8
)

func init() {
	var err error
	base62, err = basex.NewEncoding(alphabet62)
	if err != nil {
		panic(err)
	}

	for i := range index64 {
		index64[i] = -1
	}
	for i := 0; i < len(alphabet64); i++ {
		index64[alphabet64[i]] = int8(i)
	}
}

// ParseEncoding accepts an encoding name, including the short aliases "62" and "64".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "decimal", "dec", "10":
		return EncodingDecimal, nil
	case "hex", "16":
		return EncodingHex, nil
	case "base62", "62":
		return EncodingBase62, nil
	case "base64", "64":
		return EncodingBase64, nil
	}
	return EncodingNone, common.EncodingErr.WithMsg("unknown encoding: %q", s)
}

// EncodeText renders the 8-byte form b with enc.
func EncodeText(b [Size]byte, enc Encoding) (string, error) {
	switch enc {
	case EncodingDecimal:
		return strconv.FormatUint(beUint64(b), 10), nil
	case EncodingHex:
		return hex.EncodeToString(b[:]), nil
	case EncodingBase62:
		return base62.Encode(b[:]), nil
	case EncodingBase64:
		return encode64(b), nil
	}
	return "", common.EncodingErr.WithMsg("unknown encoding: %q", string(enc))
}

// DecodeText reverses EncodeText. The result is always Size bytes.
func DecodeText(s string, enc Encoding) ([Size]byte, error) {
	var out [Size]byte
	switch enc {
	case EncodingDecimal:
		if s == "" || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return out, common.EncodingErr.WithMsg("invalid decimal snowflake: %q", s)
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return out, common.EncodingErr.WithMsg("invalid decimal snowflake: %q", s).WithTrueErr(err)
		}
		return putUint64(v), nil
	case EncodingHex:
		b, err := hex.DecodeString(s)
		if err != nil {
			return out, common.EncodingErr.WithMsg("invalid hex snowflake: %q", s).WithTrueErr(err)
		}
		return toArray(b)
	case EncodingBase62:
		if s == "" {
			return out, common.EncodingErr.WithMsg("empty base62 snowflake")
		}
		b, err := base62.Decode(s)
		if err != nil {
			return out, common.EncodingErr.WithMsg("invalid base62 snowflake: %q", s).WithTrueErr(err)
		}
		return toArray(b)
	case EncodingBase64:
		return decode64(s)
	}
	return out, common.EncodingErr.WithMsg("unknown encoding: %q", string(enc))
}

func toArray(b []byte) ([Size]byte, error) {
	var out [Size]byte
	if len(b) != Size {
		return out, common.LengthErr.WithMsg("snowflake must be %d bytes, got %d", Size, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// encode64 writes the id as eleven 6-bit digits; the last digit carries the
// low 4 bits shifted left by 2.
func encode64(b [Size]byte) string {
	v := beUint64(b)
	out := make([]byte, base64Len)
	for i := 0; i < base64Len-1; i++ {
		out[i] = alphabet64[v>>(58-6*uint(i))&0x3f]
	}
	out[base64Len-1] = alphabet64[(v&0xf)<<2]
	return string(out)
}

func decode64(s string) ([Size]byte, error) {
	var out [Size]byte
	if len(s) != base64Len {
		return out, common.EncodingErr.WithMsg("base64 snowflake must be %d characters, got %d", base64Len, len(s))
	}
	var v uint64
	for i := 0; i < base64Len; i++ {
		d := index64[s[i]]
		if d < 0 {
			return out, common.EncodingErr.WithMsg("invalid base64 snowflake character %q at %d", s[i], i)
		}
		if i < base64Len-1 {
			v = v<<6 | uint64(d)
			continue
		}
		if d&0x3 != 0 {
			return out, common.EncodingErr.WithMsg("invalid base64 snowflake padding in %q", s)
		}
		v = v<<4 | uint64(d)>>2
	}
	return putUint64(v), nil
}
