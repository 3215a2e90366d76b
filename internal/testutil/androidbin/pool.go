// Package androidbin encodes compiled XML documents and resource tables for tests.
package androidbin

import (
	"encoding/binary"
	"unicode/utf16"
)

const noIndex = 0xFFFFFFFF

var le = binary.LittleEndian

// stringPool interns strings in insertion order
type stringPool struct {
	strings []string
	index   map[string]uint32
}

func newStringPool() *stringPool {
	return &stringPool{index: map[string]uint32{}}
}

func (p *stringPool) intern(s string) uint32 {
	if i, ok := p.index[s]; ok {
		return i
	}
	i := uint32(len(p.strings))
	p.strings = append(p.strings, s)
	p.index[s] = i
	return i
}

// add appends s without deduplication
func (p *stringPool) add(s string) uint32 {
	i := uint32(len(p.strings))
	p.strings = append(p.strings, s)
	return i
}

func (p *stringPool) encode(utf8 bool) []byte {
	var data []byte
	offsets := make([]uint32, len(p.strings))
	for i, s := range p.strings {
		offsets[i] = uint32(len(data))
		if utf8 {
			data = appendUTF8Length(data, len([]rune(s)))
			data = appendUTF8Length(data, len(s))
			data = append(data, s...)
			data = append(data, 0)
		} else {
			units := utf16.Encode([]rune(s))
			data = appendUTF16Length(data, len(units))
			for _, u := range units {
				data = le.AppendUint16(data, u)
			}
			data = le.AppendUint16(data, 0)
		}
	}
	for len(data)%4 != 0 {
		data = append(data, 0)
	}

	const headerSize = 28
	stringsStart := headerSize + 4*len(p.strings)
	size := stringsStart + len(data)

	var flags uint32
	if utf8 {
		flags = 1 << 8
	}

	out := chunkHeader(nil, 0x0001, headerSize, size)
	out = le.AppendUint32(out, uint32(len(p.strings)))
	out = le.AppendUint32(out, 0) // styles
	out = le.AppendUint32(out, flags)
	out = le.AppendUint32(out, uint32(stringsStart))
	out = le.AppendUint32(out, 0)
	for _, off := range offsets {
		out = le.AppendUint32(out, off)
	}
	return append(out, data...)
}

func appendUTF8Length(b []byte, n int) []byte {
	if n > 0x7f {
		return append(b, byte(n>>8)|0x80, byte(n))
	}
	return append(b, byte(n))
}

func appendUTF16Length(b []byte, n int) []byte {
	if n > 0x7fff {
		b = le.AppendUint16(b, uint16(n>>16)|0x8000)
	}
	return le.AppendUint16(b, uint16(n))
}

func chunkHeader(b []byte, typ uint16, headerSize, size int) []byte {
	b = le.AppendUint16(b, typ)
	b = le.AppendUint16(b, uint16(headerSize))
	return le.AppendUint32(b, uint32(size))
}
