package androidbin

import (
	"slices"
	"strconv"

	"github.com/ochairo/appshortcuts/internal/testutil/fakexml"
)

const androidNamespace = "http://schemas.android.com/apk/res/android"

// framework attribute ids, in resource map order
var frameworkAttrs = []struct {
	name string
	id   uint32
}{
	{"icon", 0x01010002},
	{"name", 0x01010003},
	{"exported", 0x01010010},
	{"value", 0x01010024},
	{"resource", 0x01010025},
}

// XMLOptions tunes the encoding of a document
type XMLOptions struct {
	UTF8 bool
}

// EncodeXML compiles a node tree into binary XML. Attributes are placed in
// the Android namespace except "package", which is un-namespaced. Values of
// the form "@<decimal>" become references, "true" and "false" become
// booleans, everything else is a string.
func EncodeXML(root fakexml.Node, opts XMLOptions) []byte {
	pool := newStringPool()
	resMap := make([]uint32, 0, len(frameworkAttrs))
	attrIndex := map[string]uint32{}
	for _, fa := range frameworkAttrs {
		attrIndex[fa.name] = pool.add(fa.name)
		resMap = append(resMap, fa.id)
	}

	e := &xmlEncoder{pool: pool, attrIndex: attrIndex}
	prefix := pool.intern("android")
	uri := pool.intern(androidNamespace)

	var body []byte
	body = append(body, namespaceChunk(0x0100, prefix, uri)...)
	body = e.element(body, root)
	body = append(body, namespaceChunk(0x0101, prefix, uri)...)

	poolChunk := pool.encode(opts.UTF8)

	resMapChunk := chunkHeader(nil, 0x0180, 8, 8+4*len(resMap))
	for _, id := range resMap {
		resMapChunk = le.AppendUint32(resMapChunk, id)
	}

	size := 8 + len(poolChunk) + len(resMapChunk) + len(body)
	out := chunkHeader(nil, 0x0003, 8, size)
	out = append(out, poolChunk...)
	out = append(out, resMapChunk...)
	return append(out, body...)
}

type xmlEncoder struct {
	pool      *stringPool
	attrIndex map[string]uint32
}

func (e *xmlEncoder) nameIndex(name string) uint32 {
	if i, ok := e.attrIndex[name]; ok {
		return i
	}
	return e.pool.intern(name)
}

func (e *xmlEncoder) element(b []byte, n fakexml.Node) []byte {
	if n.Name == "" {
		return e.cdata(b, n.Text)
	}

	name := e.pool.intern(n.Name)
	keys := sortedKeys(n.Attrs)

	size := 16 + 20 + 20*len(keys)
	b = chunkHeader(b, 0x0102, 16, size)
	b = le.AppendUint32(b, 1)       // line
	b = le.AppendUint32(b, noIndex) // comment
	b = le.AppendUint32(b, noIndex) // ns
	b = le.AppendUint32(b, name)
	b = le.AppendUint16(b, 20) // attributeStart
	b = le.AppendUint16(b, 20) // attributeSize
	b = le.AppendUint16(b, uint16(len(keys)))
	b = le.AppendUint16(b, 0) // id
	b = le.AppendUint16(b, 0) // class
	b = le.AppendUint16(b, 0) // style

	for _, k := range keys {
		b = e.attribute(b, k, n.Attrs[k])
	}

	for _, c := range n.Children {
		b = e.element(b, c)
	}

	b = chunkHeader(b, 0x0103, 16, 24)
	b = le.AppendUint32(b, 1)
	b = le.AppendUint32(b, noIndex)
	b = le.AppendUint32(b, noIndex)
	return le.AppendUint32(b, name)
}

func (e *xmlEncoder) attribute(b []byte, key, value string) []byte {
	ns := e.pool.intern(androidNamespace)
	if key == "package" {
		ns = noIndex
	}
	b = le.AppendUint32(b, ns)
	b = le.AppendUint32(b, e.nameIndex(key))

	raw, typ, data := e.typedValue(value)
	b = le.AppendUint32(b, raw)
	b = le.AppendUint16(b, 8)
	b = append(b, 0, typ)
	return le.AppendUint32(b, data)
}

func (e *xmlEncoder) typedValue(value string) (raw uint32, typ uint8, data uint32) {
	if len(value) > 1 && value[0] == '@' {
		if id, err := strconv.ParseUint(value[1:], 10, 32); err == nil {
			return noIndex, 0x01, uint32(id)
		}
	}
	switch value {
	case "true":
		return noIndex, 0x12, 0xFFFFFFFF
	case "false":
		return noIndex, 0x12, 0
	}
	i := e.pool.intern(value)
	return i, 0x03, i
}

func (e *xmlEncoder) cdata(b []byte, text string) []byte {
	i := e.pool.intern(text)
	b = chunkHeader(b, 0x0104, 16, 28)
	b = le.AppendUint32(b, 1)
	b = le.AppendUint32(b, noIndex)
	b = le.AppendUint32(b, i)
	b = le.AppendUint16(b, 8)
	b = append(b, 0, 0x03)
	return le.AppendUint32(b, i)
}

func namespaceChunk(typ uint16, prefix, uri uint32) []byte {
	b := chunkHeader(nil, typ, 16, 24)
	b = le.AppendUint32(b, 1)
	b = le.AppendUint32(b, noIndex)
	b = le.AppendUint32(b, prefix)
	return le.AppendUint32(b, uri)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
