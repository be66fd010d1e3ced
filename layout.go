package flakeid

import (
	"encoding/binary"
	"strings"

	"github.com/lypee/flakeid/common"
)

// Size is the length of the binary form of a snowflake.
const Size = 8

// Fields is the decoded content of a snowflake.
type Fields struct {
	Timestamp int64 // milliseconds since the unix epoch
	ServerID  uint32
	WorkerID  uint32
	Increment uint32
}

// Layout splits the second 32-bit word of a snowflake between increment,
// server id and worker id. The first word and the top 10 bits of the second
// hold the 42-bit millisecond delta from common.Epoch:
//
//	word0: delta >> 10
//	word1: [31..22] delta & 0x3ff | [21..offset] increment | [offset-1..0] server<<workerBits | worker
type Layout struct {
	serverIDBits uint32
	workerIDBits uint32

	serverIDMask       uint32
	workerIDMask       uint32
	incrementBitOffset uint32
	incrementMax       uint32
}

// NewLayout validates the bit widths and precomputes masks.
func NewLayout(serverIDBits, workerIDBits int) (Layout, error) {
	if serverIDBits < 0 || workerIDBits < 0 {
		return Layout{}, common.ConfigErr.WithMsg("bit widths must be non-negative, got server_id_bits=%d worker_id_bits=%d", serverIDBits, workerIDBits)
	}
	if serverIDBits+workerIDBits > int(common.FreeBits) {
		return Layout{}, common.ConfigErr.WithMsg("server_id_bits + worker_id_bits must not exceed %d, got %d", common.FreeBits, serverIDBits+workerIDBits)
	}

	offset := uint32(serverIDBits + workerIDBits)
	return Layout{
		serverIDBits:       uint32(serverIDBits),
		workerIDBits:       uint32(workerIDBits),
		serverIDMask:       mask(uint32(serverIDBits)),
		workerIDMask:       mask(uint32(workerIDBits)),
		incrementBitOffset: offset,
		incrementMax:       mask(common.FreeBits - offset),
	}, nil
}

// DefaultLayout is 7 bits of server id and 5 bits of worker id.
func DefaultLayout() Layout {
	l, _ := NewLayout(common.DefaultServerIDBits, common.DefaultWorkerIDBits)
	return l
}

func mask(bits uint32) uint32 {
	return uint32(1)<<bits - 1
}

func (l Layout) ServerIDBits() int { return int(l.serverIDBits) }
func (l Layout) WorkerIDBits() int { return int(l.workerIDBits) }
func (l Layout) ServerIDMask() uint32 { return l.serverIDMask }
func (l Layout) WorkerIDMask() uint32 { return l.workerIDMask }
func (l Layout) IncrementBitOffset() uint32 { return l.incrementBitOffset }

// IncrementMax is the largest increment that fits; IncrementMax()+1 ids can
// be minted per millisecond.
func (l Layout) IncrementMax() uint32 { return l.incrementMax }

// Encode packs f. Fields are masked to their widths; a timestamp outside
// the 42-bit range after common.Epoch does not round-trip.
func (l Layout) Encode(f Fields) [Size]byte {
	delta := uint64(f.Timestamp - common.Epoch)

	word0 := uint32(delta >> common.TimestampLowBits)
	word1 := (uint32(delta)&common.TimestampLowMask)<<common.TimestampLowLeft |
		(f.Increment&l.incrementMax)<<l.incrementBitOffset |
		(f.ServerID&l.serverIDMask)<<l.workerIDBits |
		f.WorkerID&l.workerIDMask

	var out [Size]byte
	binary.BigEndian.PutUint32(out[0:4], word0)
	binary.BigEndian.PutUint32(out[4:8], word1)
	return out
}

// Decode unpacks exactly Size bytes.
func (l Layout) Decode(b []byte) (Fields, error) {
	if len(b) != Size {
		return Fields{}, common.LengthErr.WithMsg("snowflake must be %d bytes, got %d", Size, len(b))
	}
	word0 := binary.BigEndian.Uint32(b[0:4])
	word1 := binary.BigEndian.Uint32(b[4:8])

	return Fields{
		Timestamp: int64(word0)<<common.TimestampLowBits + int64(word1>>common.TimestampLowLeft) + common.Epoch,
		ServerID:  (word1 >> l.workerIDBits) & l.serverIDMask,
		WorkerID:  word1 & l.workerIDMask,
		Increment: (word1 << common.TimestampLowBits >> common.TimestampLowBits) >> l.incrementBitOffset,
	}, nil
}

// BitString renders w as four 8-bit groups, most significant first.
func BitString(w uint32) string {
	var sb strings.Builder
	for i := 31; i >= 0; i-- {
		if w&(1<<uint(i)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
		if i%8 == 0 && i != 0 {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// Describe dumps both words of s with the field boundaries of l, one per line.
func (l Layout) Describe(s Snowflake) string {
	b := s.Array()
	word0 := binary.BigEndian.Uint32(b[0:4])
	word1 := binary.BigEndian.Uint32(b[4:8])

	var sb strings.Builder
	sb.WriteString("word0     " + BitString(word0) + "\n")
	sb.WriteString("word1     " + BitString(word1) + "\n")
	sb.WriteString("ts_low    " + BitString(word1&^mask(common.TimestampLowLeft)) + "\n")
	sb.WriteString("increment " + BitString(word1&(l.incrementMax<<l.incrementBitOffset)) + "\n")
	sb.WriteString("server_id " + BitString(word1&(l.serverIDMask<<l.workerIDBits)) + "\n")
	sb.WriteString("worker_id " + BitString(word1&l.workerIDMask) + "\n")
	return sb.String()
}
