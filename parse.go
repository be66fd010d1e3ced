package flakeid

import "github.com/lypee/flakeid/common"

// Parse accepts []byte, [Size]byte, uint64 or string. Strings need enc;
// the other forms ignore it.
func (l Layout) Parse(input interface{}, enc Encoding) (Snowflake, error) {
	switch v := input.(type) {
	case []byte:
		return l.ParseBytes(v)
	case [Size]byte:
		return l.ParseBytes(v[:])
	case uint64:
		return l.ParseUint64(v)
	case string:
		return l.ParseString(v, enc)
	case Snowflake:
		return l.ParseBytes(v.raw[:])
	}
	return Snowflake{}, common.EncodingErr.WithMsg("cannot parse snowflake from %T", input)
}

func (l Layout) ParseBytes(b []byte) (Snowflake, error) {
	f, err := l.Decode(b)
	if err != nil {
		return Snowflake{}, err
	}
	var raw [Size]byte
	copy(raw[:], b)
	return newSnowflake(f, raw), nil
}

func (l Layout) ParseUint64(v uint64) (Snowflake, error) {
	raw := putUint64(v)
	return l.ParseBytes(raw[:])
}

func (l Layout) ParseString(s string, enc Encoding) (Snowflake, error) {
	raw, err := DecodeText(s, enc)
	if err != nil {
		return Snowflake{}, err
	}
	return l.ParseBytes(raw[:])
}
