// Binary encoding for archived count tables.
//
// Tables keep their insertion order, so the blob for a given report is
// deterministic without sorting. Run headers are small and use gob.
//
// Count table format (little-endian):
//
//	tableCount: uint32
//	per table:
//	  nameLen:    uint16
//	  name:       [nameLen]byte
//	  entryCount: uint32
//	  entries:    [entryCount]× (keyLen:uint32 + key + count:int64)
package bbolt

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"math"

	"github.com/corey/tally/internal/ports"
)

// encodeCountTables encodes tables into a single pre-sized buffer.
func encodeCountTables(tables []ports.CountTable) ([]byte, error) {
	totalSize := 4
	for _, t := range tables {
		if len(t.Name) > math.MaxUint16 {
			return nil, fmt.Errorf("table name too long: %d bytes", len(t.Name))
		}
		totalSize += 2 + len(t.Name) + 4
		for _, e := range t.Entries {
			if uint64(len(e.Key)) > math.MaxUint32 {
				return nil, fmt.Errorf("key too long: %d bytes", len(e.Key))
			}
			totalSize += 4 + len(e.Key) + 8
		}
	}

	buf := make([]byte, totalSize)
	offset := 0

	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(tables)))
	offset += 4

	for _, t := range tables {
		binary.LittleEndian.PutUint16(buf[offset:], uint16(len(t.Name)))
		offset += 2
		offset += copy(buf[offset:], t.Name)

		binary.LittleEndian.PutUint32(buf[offset:], uint32(len(t.Entries)))
		offset += 4
		for _, e := range t.Entries {
			binary.LittleEndian.PutUint32(buf[offset:], uint32(len(e.Key)))
			offset += 4
			offset += copy(buf[offset:], e.Key)
			binary.LittleEndian.PutUint64(buf[offset:], uint64(int64(e.Count)))
			offset += 8
		}
	}

	return buf, nil
}

// decodeCountTables reverses encodeCountTables.
// Every read is bounds-checked to avoid panics on corrupt data.
func decodeCountTables(data []byte) ([]ports.CountTable, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("count tables too short: %d bytes", len(data))
	}

	offset := 0
	tableCount := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	// Each table needs at least 6 bytes; don't trust tableCount for sizing.
	if uint64(tableCount)*6 > uint64(len(data)-offset) {
		return nil, fmt.Errorf("table count %d exceeds data size", tableCount)
	}
	tables := make([]ports.CountTable, 0, tableCount)

	for i := uint32(0); i < tableCount; i++ {
		if offset+2 > len(data) {
			return nil, fmt.Errorf("truncated at table %d name length (offset %d)", i, offset)
		}
		nameLen := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
		if offset+nameLen > len(data) {
			return nil, fmt.Errorf("truncated at table %d name (offset %d, need %d)", i, offset, nameLen)
		}
		name := string(data[offset : offset+nameLen])
		offset += nameLen

		if offset+4 > len(data) {
			return nil, fmt.Errorf("truncated at table %d entry count (offset %d)", i, offset)
		}
		entryCount := binary.LittleEndian.Uint32(data[offset:])
		offset += 4
		if uint64(entryCount)*12 > uint64(len(data)-offset) {
			return nil, fmt.Errorf("table %q entry count %d exceeds data size", name, entryCount)
		}

		entries := make([]ports.CountEntry, entryCount)
		for j := range entries {
			if offset+4 > len(data) {
				return nil, fmt.Errorf("truncated at table %q entry %d key length", name, j)
			}
			keyLen := int(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
			if keyLen < 0 || offset+keyLen+8 > len(data) {
				return nil, fmt.Errorf("truncated at table %q entry %d (offset %d, need %d)", name, j, offset, keyLen+8)
			}
			entries[j].Key = string(data[offset : offset+keyLen])
			offset += keyLen
			entries[j].Count = int(int64(binary.LittleEndian.Uint64(data[offset:])))
			offset += 8
		}

		tables = append(tables, ports.CountTable{Name: name, Entries: entries})
	}

	if offset != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after count tables", len(data)-offset)
	}
	return tables, nil
}

// encodeGob encodes a value using gob.
func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob decodes gob-encoded data into target. Target must be a pointer.
func decodeGob(data []byte, target any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(target)
}
