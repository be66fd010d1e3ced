package flakeid

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lypee/flakeid/common"
)

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name         string
		serverBits   int
		workerBits   int
		wantErr      bool
		serverMask   uint32
		workerMask   uint32
		offset       uint32
		incrementMax uint32
	}{
		{"default", 7, 5, false, 127, 31, 12, 1023},
		{"no ids", 0, 0, false, 0, 0, 0, 1<<22 - 1},
		{"all ids", 12, 10, false, 4095, 1023, 22, 0},
		{"too wide", 12, 11, true, 0, 0, 0, 0},
		{"negative server", -1, 5, true, 0, 0, 0, 0},
		{"negative worker", 7, -1, true, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLayout(tt.serverBits, tt.workerBits)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ConfigErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.serverMask, l.ServerIDMask())
			assert.Equal(t, tt.workerMask, l.WorkerIDMask())
			assert.Equal(t, tt.offset, l.IncrementBitOffset())
			assert.Equal(t, tt.incrementMax, l.IncrementMax())
		})
	}
}

func TestLayoutEncodeKnownBytes(t *testing.T) {
	l := DefaultLayout()
	f := Fields{Timestamp: common.Epoch, ServerID: 13, WorkerID: 3, Increment: 0}

	b := l.Encode(f)
	assert.Equal(t, [Size]byte{0, 0, 0, 0, 0, 0, 0x01, 0xA3}, b)

	got, err := l.Decode(b[:])
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestLayoutEncodeTimestampSplit(t *testing.T) {
	l := DefaultLayout()
	// delta = 1025 ms: word0 = 1, top bits of word1 = 1
	f := Fields{Timestamp: common.Epoch + 1025, Increment: 2, ServerID: 1, WorkerID: 1}

	b := l.Encode(f)
	assert.Equal(t, [Size]byte{0, 0, 0, 1, 0x00, 0x40, 0x20, 0x21}, b)

	got, err := l.Decode(b[:])
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestLayoutHighBitsNoSignExtension(t *testing.T) {
	l := DefaultLayout()
	f := Fields{
		Timestamp: common.Epoch + 1<<42 - 1,
		ServerID:  l.ServerIDMask(),
		WorkerID:  l.WorkerIDMask(),
		Increment: l.IncrementMax(),
	}

	b := l.Encode(f)
	assert.Equal(t, [Size]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, b)

	got, err := l.Decode(b[:])
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func randomFields(r *rand.Rand, l Layout) Fields {
	return Fields{
		Timestamp: common.Epoch + r.Int63n(1<<42),
		ServerID:  uint32(r.Int63n(int64(l.ServerIDMask()) + 1)),
		WorkerID:  uint32(r.Int63n(int64(l.WorkerIDMask()) + 1)),
		Increment: uint32(r.Int63n(int64(l.IncrementMax()) + 1)),
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for serverBits := 0; serverBits <= 22; serverBits++ {
		for workerBits := 0; serverBits+workerBits <= 22; workerBits++ {
			l, err := NewLayout(serverBits, workerBits)
			require.NoError(t, err)

			for i := 0; i < 50; i++ {
				f := randomFields(r, l)
				b := l.Encode(f)
				got, err := l.Decode(b[:])
				require.NoError(t, err)
				require.Equal(t, f, got, "bits %d/%d", serverBits, workerBits)
				require.Equal(t, b, l.Encode(got))
			}
		}
	}
}

func TestLayoutFieldIsolation(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	l := DefaultLayout()

	for i := 0; i < 1000; i++ {
		f := randomFields(r, l)
		other := randomFields(r, l)

		variants := []Fields{
			{Timestamp: other.Timestamp, ServerID: f.ServerID, WorkerID: f.WorkerID, Increment: f.Increment},
			{Timestamp: f.Timestamp, ServerID: other.ServerID, WorkerID: f.WorkerID, Increment: f.Increment},
			{Timestamp: f.Timestamp, ServerID: f.ServerID, WorkerID: other.WorkerID, Increment: f.Increment},
			{Timestamp: f.Timestamp, ServerID: f.ServerID, WorkerID: f.WorkerID, Increment: other.Increment},
		}
		for _, v := range variants {
			b := l.Encode(v)
			got, err := l.Decode(b[:])
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	}
}

func TestLayoutEncodeMasksOutOfRange(t *testing.T) {
	l := DefaultLayout()
	b := l.Encode(Fields{Timestamp: common.Epoch, ServerID: 128 + 13, WorkerID: 32 + 3, Increment: 1024})

	got, err := l.Decode(b[:])
	require.NoError(t, err)
	assert.Equal(t, Fields{Timestamp: common.Epoch, ServerID: 13, WorkerID: 3}, got)
}

func TestLayoutDecodeLength(t *testing.T) {
	l := DefaultLayout()
	for _, n := range []int{0, 7, 9, 16} {
		_, err := l.Decode(make([]byte, n))
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.LengthErr), "len %d", n)
	}
}

func TestBitString(t *testing.T) {
	assert.Equal(t, "00000000_00000000_00000001_10100011", BitString(0x01A3))
	assert.Equal(t, "11111111_11111111_11111111_11111111", BitString(0xffffffff))
}

func TestLayoutDescribe(t *testing.T) {
	l := DefaultLayout()
	s, err := l.ParseBytes([]byte{0, 0, 0, 0, 0, 0, 0x01, 0xA3})
	require.NoError(t, err)

	out := l.Describe(s)
	assert.Contains(t, out, "word1     00000000_00000000_00000001_10100011\n")
	assert.Contains(t, out, "server_id 00000000_00000000_00000001_10100000\n")
	assert.Contains(t, out, "worker_id 00000000_00000000_00000000_00000011\n")
}
