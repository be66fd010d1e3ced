package utils

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/spaolacci/murmur3"
)

// GenMurmur 默默哈希
func GenMurmur(s string) uint32 {
	m := murmur3.New32()
	b := []byte(s)
	m.Write(b)
	return m.Sum32()
}

// HostSlot maps the hostname onto [0, mask].
func HostSlot(mask uint32) (uint32, error) {
	host, err := os.Hostname()
	if err != nil {
		return 0, err
	}
	return GenMurmur(host) & mask, nil
}

// Int64ToBytes int64转[]byte
func Int64ToBytes(n int64) []byte {
	buf := bytes.NewBuffer([]byte{})
	binary.Write(buf, binary.BigEndian, n)
	return buf.Bytes()
}

// BytesToInt64 reverses Int64ToBytes; short input yields 0.
func BytesToInt64(b []byte) int64 {
	if len(b) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// SpliceString 拼接字符串
func SpliceString(strs ...string) string {
	var buffer bytes.Buffer
	for i := range strs {
		buffer.WriteString(strs[i])
	}
	return buffer.String()
}
