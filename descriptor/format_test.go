package descriptor

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		dt   arrow.DataType
		want string
	}{
		{arrow.Null, "n"},
		{arrow.FixedWidthTypes.Boolean, "b"},
		{arrow.PrimitiveTypes.Int32, "i"},
		{arrow.PrimitiveTypes.Uint64, "L"},
		{arrow.FixedWidthTypes.Float16, "e"},
		{arrow.BinaryTypes.String, "u"},
		{arrow.BinaryTypes.LargeBinary, "Z"},
		{arrow.BinaryTypes.StringView, "vu"},
		{&arrow.FixedSizeBinaryType{ByteWidth: 16}, "w:16"},
		{&arrow.Decimal128Type{Precision: 10, Scale: 3}, "d:10,3"},
		{&arrow.Decimal256Type{Precision: 50, Scale: 0}, "d:50,0,256"},
		{arrow.FixedWidthTypes.Time32ms, "ttm"},
		{arrow.FixedWidthTypes.Time64ns, "ttn"},
		{&arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "Europe/Paris"}, "tsu:Europe/Paris"},
		{&arrow.TimestampType{Unit: arrow.Second}, "tss:"},
		{arrow.FixedWidthTypes.Duration_us, "tDu"},
		{arrow.FixedWidthTypes.MonthDayNanoInterval, "tin"},
		{arrow.ListOf(arrow.PrimitiveTypes.Int8), "+l"},
		{arrow.LargeListOf(arrow.PrimitiveTypes.Int8), "+L"},
		{arrow.ListViewOf(arrow.PrimitiveTypes.Int8), "+vl"},
		{arrow.FixedSizeListOf(4, arrow.PrimitiveTypes.Int8), "+w:4"},
		{arrow.StructOf(), "+s"},
		{arrow.MapOf(arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int8), "+m"},
		{arrow.RunEndEncodedOf(arrow.PrimitiveTypes.Int32, arrow.PrimitiveTypes.Int8), "+r"},
		{arrow.DenseUnionOf([]arrow.Field{{Name: "a", Type: arrow.PrimitiveTypes.Int8}, {Name: "b", Type: arrow.BinaryTypes.String}}, []arrow.UnionTypeCode{3, 7}), "+ud:3,7"},
		{arrow.SparseUnionOf([]arrow.Field{{Name: "a", Type: arrow.PrimitiveTypes.Int8}}, []arrow.UnionTypeCode{0}), "+us:0"},
		{&arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Uint16, ValueType: arrow.BinaryTypes.String}, "S"},
	}
	for _, tc := range tests {
		got, err := FormatOf(tc.dt)
		require.NoError(t, err, tc.dt.String())
		assert.Equal(t, tc.want, got, tc.dt.String())
	}
}

func TestSchemaRoundTrip(t *testing.T) {
	fields := []arrow.Field{
		{Name: "ints", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "fsb", Type: &arrow.FixedSizeBinaryType{ByteWidth: 3}},
		{Name: "ts", Type: &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}, Nullable: true},
		{Name: "dec", Type: &arrow.Decimal256Type{Precision: 40, Scale: 4}},
		{Name: "list", Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: true},
		{Name: "fsl", Type: arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Float32)},
		{Name: "struct", Type: arrow.StructOf(
			arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int16},
			arrow.Field{Name: "y", Type: arrow.BinaryTypes.LargeString, Nullable: true},
		)},
		{Name: "map", Type: arrow.MapOf(arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int32)},
		{Name: "ree", Type: arrow.RunEndEncodedOf(arrow.PrimitiveTypes.Int16, arrow.PrimitiveTypes.Float64)},
		{Name: "union", Type: arrow.SparseUnionOf([]arrow.Field{
			{Name: "i", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
			{Name: "s", Type: arrow.BinaryTypes.String, Nullable: true},
		}, []arrow.UnionTypeCode{0, 5})},
		{Name: "dict", Type: &arrow.DictionaryType{
			IndexType: arrow.PrimitiveTypes.Int8,
			ValueType: arrow.BinaryTypes.String,
			Ordered:   true,
		}, Nullable: true},
	}
	for _, field := range fields {
		t.Run(field.Name, func(t *testing.T) {
			s, err := SchemaForField(field)
			require.NoError(t, err)
			defer ReleaseSchema(s)
			require.True(t, IsSchemaCreatedWithLibrary(s))
			assert.Equal(t, field.Name, s.Name)
			assert.Equal(t, field.Nullable, s.Flags.Has(FlagNullable))

			got, err := FieldOf(s)
			require.NoError(t, err)
			assert.Truef(t, arrow.TypeEqual(field.Type, got.Type), "Expected %s, got %s", field.Type, got.Type)
		})
	}
}

func TestMapKeysSortedFlag(t *testing.T) {
	mt := arrow.MapOf(arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int8)
	mt.KeysSorted = true
	s, err := SchemaForField(arrow.Field{Name: "m", Type: mt})
	require.NoError(t, err)
	defer ReleaseSchema(s)
	require.True(t, s.Flags.Has(FlagMapKeysSorted))

	dt, err := DataTypeOf(s)
	require.NoError(t, err)
	assert.True(t, dt.(*arrow.MapType).KeysSorted)
}

func TestParseFormatErrors(t *testing.T) {
	for _, f := range []string{"", "x", "w:", "w:abc", "d:1", "d:1,2,64", "tsx:", "+l", "+w:x", "+ud:a", "+r"} {
		_, err := DataTypeOf(&ArrowSchema{Format: f})
		assert.ErrorIs(t, err, ErrInvalidFormat, "format %q", f)
	}
}

func TestCopySchemaIsIndependent(t *testing.T) {
	field := arrow.Field{
		Name:     "s",
		Type:     arrow.StructOf(arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int8}),
		Metadata: arrow.NewMetadata([]string{"k"}, []string{"v"}),
	}
	src, err := SchemaForField(field)
	require.NoError(t, err)

	dup, err := CopySchema(src)
	require.NoError(t, err)
	ReleaseSchema(src)

	require.False(t, dup.IsReleased())
	require.Len(t, dup.Children, 1)
	assert.Equal(t, "c", dup.Children[0].Format)
	md, err := DecodeMetadata(dup.Metadata)
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, md.Values())
	ReleaseSchema(dup)
	assert.True(t, dup.IsReleased())
}

func FuzzFormatString(f *testing.F) {
	for _, s := range []string{"i", "w:3", "d:5,2", "tsn:UTC", "+s", "+us:1,2", "vu"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, format string) {
		dt, err := DataTypeOf(&ArrowSchema{Format: format})
		if err != nil {
			return
		}
		back, err := FormatOf(dt)
		if err != nil {
			t.Fatalf("no format for parsed type %s: %v", dt, err)
		}
		again, err := DataTypeOf(&ArrowSchema{Format: back})
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", back, err)
		}
		if !arrow.TypeEqual(dt, again) {
			t.Errorf("Expected %s, got %s", dt, again)
		}
	})
}
