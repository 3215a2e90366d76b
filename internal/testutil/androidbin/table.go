package androidbin

import (
	"slices"
	"unicode/utf16"
)

// Value types used by table entries
const (
	TypeString = 0x03
	TypeColor  = 0x1c
)

// TableEntry is one resource value of the default configuration
type TableEntry struct {
	ID       uint32
	Type     string // type name, e.g. "string"
	Key      string
	String   string // value of TypeString entries
	DataType uint8  // defaults to TypeString
	Data     uint32
}

// TableOptions selects the string pool encoding
type TableOptions struct {
	PackageName string
	UTF8        bool
}

const configSize = 64

// EncodeTable builds a resources.arsc holding a single package
func EncodeTable(opts TableOptions, entries []TableEntry) []byte {
	global := newStringPool()
	keys := newStringPool()

	var pkgID uint8
	typeNames := map[uint8]string{}
	byType := map[uint8][]TableEntry{}
	maxEntry := map[uint8]uint16{}

	for _, e := range entries {
		pkgID = uint8(e.ID >> 24)
		typeID := uint8(e.ID >> 16)
		typeNames[typeID] = e.Type
		if e.DataType == 0 {
			e.DataType = TypeString
		}
		if e.DataType == TypeString {
			e.Data = global.intern(e.String)
		}
		keys.intern(e.Key)
		byType[typeID] = append(byType[typeID], e)
		if idx := uint16(e.ID); idx >= maxEntry[typeID] {
			maxEntry[typeID] = idx
		}
	}

	var typeIDs []uint8
	for id := range typeNames {
		typeIDs = append(typeIDs, id)
	}
	slices.Sort(typeIDs)

	types := newStringPool()
	for id := uint8(1); len(typeIDs) > 0 && id <= typeIDs[len(typeIDs)-1]; id++ {
		name, ok := typeNames[id]
		if !ok {
			name = "unused"
		}
		types.add(name)
	}

	var body []byte
	for _, typeID := range typeIDs {
		count := int(maxEntry[typeID]) + 1
		body = append(body, typeSpec(typeID, count)...)
		body = append(body, typeChunk(keys, typeID, count, byType[typeID])...)
	}

	typePool := types.encode(opts.UTF8)
	keyPool := keys.encode(opts.UTF8)

	const pkgHeaderSize = 288
	pkgSize := pkgHeaderSize + len(typePool) + len(keyPool) + len(body)
	pkg := chunkHeader(nil, 0x0200, pkgHeaderSize, pkgSize)
	pkg = le.AppendUint32(pkg, uint32(pkgID))
	name := utf16.Encode([]rune(opts.PackageName))
	for i := 0; i < 128; i++ {
		var u uint16
		if i < len(name) {
			u = name[i]
		}
		pkg = le.AppendUint16(pkg, u)
	}
	pkg = le.AppendUint32(pkg, pkgHeaderSize) // typeStrings
	pkg = le.AppendUint32(pkg, uint32(types.len()))
	pkg = le.AppendUint32(pkg, uint32(pkgHeaderSize+len(typePool))) // keyStrings
	pkg = le.AppendUint32(pkg, uint32(keys.len()))
	pkg = le.AppendUint32(pkg, 0) // typeIdOffset
	pkg = append(pkg, typePool...)
	pkg = append(pkg, keyPool...)
	pkg = append(pkg, body...)

	globalPool := global.encode(opts.UTF8)
	size := 12 + len(globalPool) + len(pkg)
	out := chunkHeader(nil, 0x0002, 12, size)
	out = le.AppendUint32(out, 1)
	out = append(out, globalPool...)
	return append(out, pkg...)
}

func (p *stringPool) len() int {
	return len(p.strings)
}

func typeSpec(typeID uint8, count int) []byte {
	b := chunkHeader(nil, 0x0202, 16, 16+4*count)
	b = append(b, typeID, 0)
	b = le.AppendUint16(b, 0)
	b = le.AppendUint32(b, uint32(count))
	for i := 0; i < count; i++ {
		b = le.AppendUint32(b, 0)
	}
	return b
}

func typeChunk(keys *stringPool, typeID uint8, count int, entries []TableEntry) []byte {
	byIndex := map[uint16]TableEntry{}
	for _, e := range entries {
		byIndex[uint16(e.ID)] = e
	}

	var data, offs []byte
	for i := 0; i < count; i++ {
		e, ok := byIndex[uint16(i)]
		if !ok {
			offs = le.AppendUint32(offs, noIndex)
			continue
		}
		offs = le.AppendUint32(offs, uint32(len(data)))
		data = appendEntry(data, keys.index[e.Key], e)
	}

	headerSize := 20 + configSize
	entriesStart := headerSize + len(offs)
	b := chunkHeader(nil, 0x0201, headerSize, entriesStart+len(data))
	b = append(b, typeID, 0)
	b = le.AppendUint16(b, 0)
	b = le.AppendUint32(b, uint32(count))
	b = le.AppendUint32(b, uint32(entriesStart))

	config := make([]byte, configSize)
	le.PutUint32(config, configSize)
	b = append(b, config...)
	b = append(b, offs...)
	return append(b, data...)
}

func appendEntry(b []byte, key uint32, e TableEntry) []byte {
	b = le.AppendUint16(b, 8)
	b = le.AppendUint16(b, 0)
	b = le.AppendUint32(b, key)
	b = le.AppendUint16(b, 8)
	b = append(b, 0, e.DataType)
	return le.AppendUint32(b, e.Data)
}
