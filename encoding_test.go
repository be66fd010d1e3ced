package flakeid

import (
	"crypto/rand"
	"errors"
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lypee/flakeid/common"
)

func randomID(t *testing.T) [Size]byte {
	var b [Size]byte
	_, err := rand.Read(b[:])
	require.NoError(t, err)
	return b
}

func TestEncodeTextRoundTrip(t *testing.T) {
	for i := 0; i < 10000; i++ {
		b := randomID(t)
		for _, enc := range Encodings {
			s, err := EncodeText(b, enc)
			require.NoError(t, err)
			got, err := DecodeText(s, enc)
			require.NoError(t, err, "%s %q", enc, s)
			require.Equal(t, b, got, "%s %q", enc, s)
		}
	}
}

func TestEncodeTextEdgeValues(t *testing.T) {
	zero := [Size]byte{}
	ones := [Size]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	small := [Size]byte{0, 0, 0, 0, 0, 0, 0x01, 0xA3}

	tests := []struct {
		name string
		b    [Size]byte
		enc  Encoding
		want string
	}{
		{"zero decimal", zero, EncodingDecimal, "0"},
		{"zero hex", zero, EncodingHex, "0000000000000000"},
		{"zero base62", zero, EncodingBase62, "00000000"},
		{"zero base64", zero, EncodingBase64, "00000000000"},
		{"ones decimal", ones, EncodingDecimal, "18446744073709551615"},
		{"ones hex", ones, EncodingHex, "ffffffffffffffff"},
		{"ones base64", ones, EncodingBase64, "zzzzzzzzzzw"},
		{"small decimal", small, EncodingDecimal, "419"},
		{"small hex", small, EncodingHex, "00000000000001a3"},
		{"small base62", small, EncodingBase62, "0000006l"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeText(tt.b, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := DecodeText(got, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.b, back)
		})
	}
}

func TestEncodeTextFormats(t *testing.T) {
	decimal := regexp.MustCompile(`^\d+$`)
	hexRe := regexp.MustCompile(`^[0-9a-f]{16}$`)
	for i := 0; i < 1000; i++ {
		b := randomID(t)
		d, _ := EncodeText(b, EncodingDecimal)
		assert.Regexp(t, decimal, d)
		h, _ := EncodeText(b, EncodingHex)
		assert.Regexp(t, hexRe, h)
		s, _ := EncodeText(b, EncodingBase64)
		assert.Len(t, s, 11)
	}
}

func TestBase64Sortable(t *testing.T) {
	ids := make([][Size]byte, 500)
	texts := make([]string, len(ids))
	for i := range ids {
		ids[i] = randomID(t)
		texts[i], _ = EncodeText(ids[i], EncodingBase64)
	}
	sort.Slice(ids, func(i, j int) bool { return beUint64(ids[i]) < beUint64(ids[j]) })
	sort.Strings(texts)
	for i := range ids {
		got, err := DecodeText(texts[i], EncodingBase64)
		require.NoError(t, err)
		assert.Equal(t, ids[i], got)
	}
}

func TestDecodeTextErrors(t *testing.T) {
	tests := []struct {
		name string
		s    string
		enc  Encoding
		want *common.Err
	}{
		{"no encoding", "419", EncodingNone, common.EncodingErr},
		{"unknown encoding", "419", Encoding("octal"), common.EncodingErr},
		{"decimal sign", "+419", EncodingDecimal, common.EncodingErr},
		{"decimal empty", "", EncodingDecimal, common.EncodingErr},
		{"decimal too big", "18446744073709551616", EncodingDecimal, common.EncodingErr},
		{"hex non hex", "00000000000001g3", EncodingHex, common.EncodingErr},
		{"hex odd", "0000000000001a3", EncodingHex, common.EncodingErr},
		{"hex short", "01a3", EncodingHex, common.LengthErr},
		{"base62 bad char", "0000006-", EncodingBase62, common.EncodingErr},
		{"base62 empty", "", EncodingBase62, common.EncodingErr},
		{"base62 too long", "zzzzzzzzzzzzzzzz", EncodingBase62, common.LengthErr},
		{"base64 short", "0000000000", EncodingBase64, common.EncodingErr},
		{"base64 bad char", "0000000000+", EncodingBase64, common.EncodingErr},
		{"base64 padding", "00000000001", EncodingBase64, common.EncodingErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeText(tt.s, tt.enc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{
		"decimal": EncodingDecimal,
		"HEX":     EncodingHex,
		"62":      EncodingBase62,
		"base62":  EncodingBase62,
		"64":      EncodingBase64,
		" base64": EncodingBase64,
	} {
		got, err := ParseEncoding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseEncoding("base32")
	assert.True(t, errors.Is(err, common.EncodingErr))
}
