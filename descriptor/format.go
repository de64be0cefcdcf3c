package descriptor

import (
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/pkg/errors"
)

// ErrInvalidFormat is returned for a format string that names no known type.
var ErrInvalidFormat = errors.New("invalid format string")

var formatToSimpleType = map[string]arrow.DataType{
	"n":   arrow.Null,
	"b":   arrow.FixedWidthTypes.Boolean,
	"c":   arrow.PrimitiveTypes.Int8,
	"C":   arrow.PrimitiveTypes.Uint8,
	"s":   arrow.PrimitiveTypes.Int16,
	"S":   arrow.PrimitiveTypes.Uint16,
	"i":   arrow.PrimitiveTypes.Int32,
	"I":   arrow.PrimitiveTypes.Uint32,
	"l":   arrow.PrimitiveTypes.Int64,
	"L":   arrow.PrimitiveTypes.Uint64,
	"e":   arrow.FixedWidthTypes.Float16,
	"f":   arrow.PrimitiveTypes.Float32,
	"g":   arrow.PrimitiveTypes.Float64,
	"z":   arrow.BinaryTypes.Binary,
	"Z":   arrow.BinaryTypes.LargeBinary,
	"u":   arrow.BinaryTypes.String,
	"U":   arrow.BinaryTypes.LargeString,
	"vz":  arrow.BinaryTypes.BinaryView,
	"vu":  arrow.BinaryTypes.StringView,
	"tdD": arrow.FixedWidthTypes.Date32,
	"tdm": arrow.FixedWidthTypes.Date64,
	"tts": arrow.FixedWidthTypes.Time32s,
	"ttm": arrow.FixedWidthTypes.Time32ms,
	"ttu": arrow.FixedWidthTypes.Time64us,
	"ttn": arrow.FixedWidthTypes.Time64ns,
	"tDs": arrow.FixedWidthTypes.Duration_s,
	"tDm": arrow.FixedWidthTypes.Duration_ms,
	"tDu": arrow.FixedWidthTypes.Duration_us,
	"tDn": arrow.FixedWidthTypes.Duration_ns,
	"tiM": arrow.FixedWidthTypes.MonthInterval,
	"tiD": arrow.FixedWidthTypes.DayTimeInterval,
	"tin": arrow.FixedWidthTypes.MonthDayNanoInterval,
}

var timeUnitFormat = [...]string{
	arrow.Second:      "s",
	arrow.Millisecond: "m",
	arrow.Microsecond: "u",
	arrow.Nanosecond:  "n",
}

var formatToTimeUnit = map[byte]arrow.TimeUnit{
	's': arrow.Second,
	'm': arrow.Millisecond,
	'u': arrow.Microsecond,
	'n': arrow.Nanosecond,
}

// FormatOf returns the format string of dt. A dictionary type yields the
// format of its index type; the value type travels in the dictionary schema.
func FormatOf(dt arrow.DataType) (string, error) {
	switch dt := dt.(type) {
	case *arrow.NullType:
		return "n", nil
	case *arrow.BooleanType:
		return "b", nil
	case *arrow.Int8Type:
		return "c", nil
	case *arrow.Uint8Type:
		return "C", nil
	case *arrow.Int16Type:
		return "s", nil
	case *arrow.Uint16Type:
		return "S", nil
	case *arrow.Int32Type:
		return "i", nil
	case *arrow.Uint32Type:
		return "I", nil
	case *arrow.Int64Type:
		return "l", nil
	case *arrow.Uint64Type:
		return "L", nil
	case *arrow.Float16Type:
		return "e", nil
	case *arrow.Float32Type:
		return "f", nil
	case *arrow.Float64Type:
		return "g", nil
	case *arrow.BinaryType:
		return "z", nil
	case *arrow.LargeBinaryType:
		return "Z", nil
	case *arrow.StringType:
		return "u", nil
	case *arrow.LargeStringType:
		return "U", nil
	case *arrow.BinaryViewType:
		return "vz", nil
	case *arrow.StringViewType:
		return "vu", nil
	case *arrow.FixedSizeBinaryType:
		return "w:" + strconv.Itoa(dt.ByteWidth), nil
	case *arrow.Decimal128Type:
		return "d:" + strconv.Itoa(int(dt.Precision)) + "," + strconv.Itoa(int(dt.Scale)), nil
	case *arrow.Decimal256Type:
		return "d:" + strconv.Itoa(int(dt.Precision)) + "," + strconv.Itoa(int(dt.Scale)) + ",256", nil
	case *arrow.Date32Type:
		return "tdD", nil
	case *arrow.Date64Type:
		return "tdm", nil
	case *arrow.Time32Type:
		return "tt" + timeUnitFormat[dt.Unit], nil
	case *arrow.Time64Type:
		return "tt" + timeUnitFormat[dt.Unit], nil
	case *arrow.TimestampType:
		return "ts" + timeUnitFormat[dt.Unit] + ":" + dt.TimeZone, nil
	case *arrow.DurationType:
		return "tD" + timeUnitFormat[dt.Unit], nil
	case *arrow.MonthIntervalType:
		return "tiM", nil
	case *arrow.DayTimeIntervalType:
		return "tiD", nil
	case *arrow.MonthDayNanoIntervalType:
		return "tin", nil
	case *arrow.ListType:
		return "+l", nil
	case *arrow.LargeListType:
		return "+L", nil
	case *arrow.ListViewType:
		return "+vl", nil
	case *arrow.LargeListViewType:
		return "+vL", nil
	case *arrow.FixedSizeListType:
		return "+w:" + strconv.Itoa(int(dt.Len())), nil
	case *arrow.StructType:
		return "+s", nil
	case *arrow.MapType:
		return "+m", nil
	case *arrow.RunEndEncodedType:
		return "+r", nil
	case arrow.UnionType:
		var b strings.Builder
		if dt.Mode() == arrow.DenseMode {
			b.WriteString("+ud:")
		} else {
			b.WriteString("+us:")
		}
		for i, code := range dt.TypeCodes() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(int(code)))
		}
		return b.String(), nil
	case *arrow.DictionaryType:
		return FormatOf(dt.IndexType)
	case arrow.ExtensionType:
		return FormatOf(dt.StorageType())
	}
	return "", errors.Wrapf(ErrInvalidFormat, "no format for data type %s", dt)
}

// ChildFields returns the fields of the children an array of dt carries.
func ChildFields(dt arrow.DataType) []arrow.Field {
	switch dt := dt.(type) {
	case *arrow.StructType:
		return dt.Fields()
	case arrow.UnionType:
		return dt.Fields()
	case *arrow.RunEndEncodedType:
		return []arrow.Field{
			{Name: "run_ends", Type: dt.RunEnds()},
			{Name: "values", Type: dt.Encoded(), Nullable: true},
		}
	case arrow.ListLikeType:
		return []arrow.Field{dt.ElemField()}
	case arrow.ExtensionType:
		return ChildFields(dt.StorageType())
	}
	return nil
}

// DataTypeOf resolves the logical type described by s, its children and its
// dictionary.
func DataTypeOf(s *ArrowSchema) (arrow.DataType, error) {
	children := make([]arrow.Field, len(s.Children))
	for i, c := range s.Children {
		if c.IsReleased() {
			return nil, errors.Wrapf(ErrInvalidFormat, "%q: child %d is missing", s.Format, i)
		}
		f, err := FieldOf(c)
		if err != nil {
			return nil, errors.Wrapf(err, "child %d", i)
		}
		children[i] = f
	}

	dt, err := parseFormat(s.Format, s.Flags, children)
	if err != nil {
		return nil, err
	}

	if s.Dictionary != nil {
		valueType, err := DataTypeOf(s.Dictionary)
		if err != nil {
			return nil, errors.Wrap(err, "dictionary")
		}
		dt = &arrow.DictionaryType{
			IndexType: dt,
			ValueType: valueType,
			Ordered:   s.Flags.Has(FlagDictionaryOrdered),
		}
	}
	return dt, nil
}

// FieldOf converts s to an arrow.Field carrying its name, nullability and
// metadata.
func FieldOf(s *ArrowSchema) (arrow.Field, error) {
	dt, err := DataTypeOf(s)
	if err != nil {
		return arrow.Field{}, err
	}
	md, err := DecodeMetadata(s.Metadata)
	if err != nil {
		return arrow.Field{}, err
	}
	return arrow.Field{
		Name:     s.Name,
		Type:     dt,
		Nullable: s.Flags.Has(FlagNullable),
		Metadata: md,
	}, nil
}

func parseFormat(f string, flags Flag, children []arrow.Field) (arrow.DataType, error) {
	if dt, ok := formatToSimpleType[f]; ok {
		return dt, nil
	}
	invalid := func(msg string) error {
		return errors.Wrapf(ErrInvalidFormat, "%q: %s", f, msg)
	}
	needChildren := func(n int) error {
		if len(children) != n {
			return invalid("expected " + strconv.Itoa(n) + " children, got " + strconv.Itoa(len(children)))
		}
		return nil
	}

	head, params, hasParams := strings.Cut(f, ":")
	switch {
	case len(head) == 3 && head[:2] == "ts" && hasParams:
		unit, ok := formatToTimeUnit[head[2]]
		if !ok {
			return nil, invalid("unknown time unit")
		}
		return &arrow.TimestampType{Unit: unit, TimeZone: params}, nil
	case head == "w" && hasParams:
		width, err := strconv.Atoi(params)
		if err != nil || width < 0 {
			return nil, invalid("bad byte width")
		}
		return &arrow.FixedSizeBinaryType{ByteWidth: width}, nil
	case head == "d" && hasParams:
		return parseDecimal(f, params)
	case f == "+l":
		if err := needChildren(1); err != nil {
			return nil, err
		}
		return arrow.ListOfField(children[0]), nil
	case f == "+L":
		if err := needChildren(1); err != nil {
			return nil, err
		}
		return arrow.LargeListOfField(children[0]), nil
	case f == "+vl":
		if err := needChildren(1); err != nil {
			return nil, err
		}
		return arrow.ListViewOfField(children[0]), nil
	case f == "+vL":
		if err := needChildren(1); err != nil {
			return nil, err
		}
		return arrow.LargeListViewOfField(children[0]), nil
	case head == "+w" && hasParams:
		if err := needChildren(1); err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(params, 10, 32)
		if err != nil || n < 0 {
			return nil, invalid("bad list size")
		}
		return arrow.FixedSizeListOfField(int32(n), children[0]), nil
	case f == "+s":
		return arrow.StructOf(children...), nil
	case f == "+m":
		if err := needChildren(1); err != nil {
			return nil, err
		}
		entries, ok := children[0].Type.(*arrow.StructType)
		if !ok || entries.NumFields() != 2 {
			return nil, invalid("map entries must be a struct of key and value")
		}
		mt := arrow.MapOf(entries.Field(0).Type, entries.Field(1).Type)
		mt.KeysSorted = flags.Has(FlagMapKeysSorted)
		return mt, nil
	case f == "+r":
		if err := needChildren(2); err != nil {
			return nil, err
		}
		return arrow.RunEndEncodedOf(children[0].Type, children[1].Type), nil
	case (head == "+ud" || head == "+us") && hasParams:
		mode := arrow.SparseMode
		if head == "+ud" {
			mode = arrow.DenseMode
		}
		var codes []arrow.UnionTypeCode
		if params != "" {
			for _, c := range strings.Split(params, ",") {
				v, err := strconv.ParseInt(c, 10, 8)
				if err != nil || v < 0 {
					return nil, invalid("bad union type code")
				}
				codes = append(codes, arrow.UnionTypeCode(v))
			}
		}
		if err := needChildren(len(codes)); err != nil {
			return nil, err
		}
		return arrow.UnionOf(mode, children, codes), nil
	}
	return nil, invalid("unknown format")
}

// parseDecimal handles "d:precision,scale[,bitwidth]"; the bit width
// defaults to 128.
func parseDecimal(f, params string) (arrow.DataType, error) {
	props := strings.Split(params, ",")
	if len(props) < 2 || len(props) > 3 {
		return nil, errors.Wrapf(ErrInvalidFormat, "%q: wrong number of decimal properties", f)
	}
	bitWidth := 128
	if len(props) == 3 {
		w, err := strconv.Atoi(props[2])
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidFormat, "%q: bad decimal bit width", f)
		}
		bitWidth = w
	}
	precision, err := strconv.ParseInt(props[0], 10, 32)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFormat, "%q: bad decimal precision", f)
	}
	scale, err := strconv.ParseInt(props[1], 10, 32)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFormat, "%q: bad decimal scale", f)
	}
	switch bitWidth {
	case 128:
		return &arrow.Decimal128Type{Precision: int32(precision), Scale: int32(scale)}, nil
	case 256:
		return &arrow.Decimal256Type{Precision: int32(precision), Scale: int32(scale)}, nil
	}
	return nil, errors.Wrapf(ErrInvalidFormat, "%q: only 128 and 256 bit decimals are supported", f)
}

// SchemaForField builds a library-owned schema tree describing field,
// including its children and dictionary.
func SchemaForField(field arrow.Field) (*ArrowSchema, error) {
	childFields := ChildFields(field.Type)
	children := make([]SchemaLink, 0, len(childFields))
	var dict *SchemaLink
	release := func() {
		for _, c := range children {
			c.release()
		}
		if dict != nil {
			dict.release()
		}
	}
	for _, cf := range childFields {
		child, err := SchemaForField(cf)
		if err != nil {
			release()
			return nil, err
		}
		children = append(children, OwnedSchema(child))
	}

	if dt, ok := field.Type.(*arrow.DictionaryType); ok {
		values, err := SchemaForField(arrow.Field{Type: dt.ValueType, Nullable: true})
		if err != nil {
			release()
			return nil, err
		}
		link := OwnedSchema(values)
		dict = &link
	}

	s, err := NewSchemaForField(field, children, dict)
	if err != nil {
		release()
		return nil, err
	}
	return s, nil
}

// NewSchemaForField builds a library-owned schema for field around the given
// child and dictionary slots instead of deriving them from the field type.
// On error the slots are left untouched.
func NewSchemaForField(field arrow.Field, children []SchemaLink, dictionary *SchemaLink) (*ArrowSchema, error) {
	format, err := FormatOf(field.Type)
	if err != nil {
		return nil, err
	}
	var flags Flag
	if field.Nullable {
		flags |= FlagNullable
	}
	if mt, ok := field.Type.(*arrow.MapType); ok && mt.KeysSorted {
		flags |= FlagMapKeysSorted
	}
	if dt, ok := field.Type.(*arrow.DictionaryType); ok && dt.Ordered {
		flags |= FlagDictionaryOrdered
	}

	md := field.Metadata
	if ext, ok := field.Type.(arrow.ExtensionType); ok {
		keys := append(append([]string(nil), md.Keys()...), ExtensionNameKey, ExtensionMetadataKey)
		values := append(append([]string(nil), md.Values()...), ext.ExtensionName(), ext.Serialize())
		md = arrow.NewMetadata(keys, values)
	}
	return NewArrowSchema(format, field.Name, md, flags, children, dictionary), nil
}
