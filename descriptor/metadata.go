package descriptor

import (
	"bytes"
	"encoding/binary"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/pkg/errors"
)

// Reserved metadata keys signalling an extension type.
const (
	ExtensionNameKey     = "ARROW:extension:name"
	ExtensionMetadataKey = "ARROW:extension:metadata"
)

// ErrInvalidMetadata is returned for a truncated or malformed metadata blob.
var ErrInvalidMetadata = errors.New("invalid metadata encoding")

// EncodeMetadata encodes md the way the C data interface expects:
//
//	int32 number of pairs
//	for each pair: int32 key length, key bytes, int32 value length, value bytes
//
// Integers are little endian. Empty metadata encodes to nil.
func EncodeMetadata(md arrow.Metadata) []byte {
	if md.Len() == 0 {
		return nil
	}
	keys, values := md.Keys(), md.Values()

	var b bytes.Buffer
	size := 4
	for i := range keys {
		size += 8 + len(keys[i]) + len(values[i])
	}
	b.Grow(size)

	binary.Write(&b, binary.LittleEndian, int32(len(keys)))
	for i := range keys {
		binary.Write(&b, binary.LittleEndian, int32(len(keys[i])))
		b.WriteString(keys[i])
		binary.Write(&b, binary.LittleEndian, int32(len(values[i])))
		b.WriteString(values[i])
	}
	return b.Bytes()
}

// DecodeMetadata decodes a blob produced by EncodeMetadata or by any other C
// data interface producer. A nil blob decodes to empty metadata.
func DecodeMetadata(data []byte) (arrow.Metadata, error) {
	if data == nil {
		return arrow.Metadata{}, nil
	}
	r := metadataReader{data: data}
	n, err := r.int32()
	if err != nil {
		return arrow.Metadata{}, err
	}
	if n < 0 {
		return arrow.Metadata{}, errors.Wrapf(ErrInvalidMetadata, "negative pair count %d", n)
	}
	keys := make([]string, 0, min(int(n), len(data)/8))
	values := make([]string, 0, cap(keys))
	for i := int32(0); i < n; i++ {
		k, err := r.str()
		if err != nil {
			return arrow.Metadata{}, errors.Wrapf(err, "key %d", i)
		}
		v, err := r.str()
		if err != nil {
			return arrow.Metadata{}, errors.Wrapf(err, "value %d", i)
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	return arrow.NewMetadata(keys, values), nil
}

type metadataReader struct {
	data []byte
}

func (r *metadataReader) int32() (int32, error) {
	if len(r.data) < 4 {
		return 0, errors.Wrap(ErrInvalidMetadata, "truncated length")
	}
	v := int32(binary.LittleEndian.Uint32(r.data))
	r.data = r.data[4:]
	return v, nil
}

func (r *metadataReader) str() (string, error) {
	l, err := r.int32()
	if err != nil {
		return "", err
	}
	if l < 0 || int(l) > len(r.data) {
		return "", errors.Wrapf(ErrInvalidMetadata, "length %d past end of blob", l)
	}
	s := string(r.data[:l])
	r.data = r.data[l:]
	return s, nil
}

// ExtensionName returns the extension type name recorded in md, if any.
func ExtensionName(md arrow.Metadata) (string, bool) {
	i := md.FindKey(ExtensionNameKey)
	if i < 0 {
		return "", false
	}
	return md.Values()[i], true
}
