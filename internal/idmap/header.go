package idmap

import "encoding/binary"

// header occupies page 0: root page id, height, key count, and the
// page size the tree was built with, so that reopening reconstructs
// the tree without replaying any log (spec §4.6).
type header struct {
	root     uint64
	height   uint32
	count    uint64
	pageSize uint32
}

func encodeHeader(h header, pageSize int) []byte {
	buf := make([]byte, pageSize)
	binary.LittleEndian.PutUint64(buf[0:], h.root)
	binary.LittleEndian.PutUint32(buf[8:], h.height)
	binary.LittleEndian.PutUint64(buf[12:], h.count)
	binary.LittleEndian.PutUint32(buf[20:], h.pageSize)
	return buf
}

func decodeHeader(buf []byte) header {
	return header{
		root:     binary.LittleEndian.Uint64(buf[0:]),
		height:   binary.LittleEndian.Uint32(buf[8:]),
		count:    binary.LittleEndian.Uint64(buf[12:]),
		pageSize: binary.LittleEndian.Uint32(buf[20:]),
	}
}
