package common

import "time"

const (
	// Epoch 2022-01-01 00:00:00 UTC, milliseconds since the unix epoch
	Epoch = int64(1640995200000)

	TimestampLowBits = uint32(10) // low bits of the delta, stored at the top of the second word
	TimestampLowMask = uint32(1)<<TimestampLowBits - 1
	TimestampLowLeft = uint32(22) // 32 - TimestampLowBits
	// FreeBits is what remains of the second word for increment + server id + worker id
	FreeBits = TimestampLowLeft

	DefaultServerIDBits = 7
	DefaultWorkerIDBits = 5

	// MaxRetries bounds CreateSafe; one millisecond is normally enough
	MaxRetries        = 100
	DefaultRetryDelay = 100 * time.Microsecond
)

const (
	WorkIdNodePrefix = "/Id-"
	WorkIdPath       = "/IDMaker"
	// MaxWorkIdProbes caps the ZooKeeper round trips of one lease attempt
	MaxWorkIdProbes = 512
)
