//go:build cgo

package bridge

import (
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/cdata"
	"github.com/pkg/errors"

	"github.com/VanDung-dev/columnar/proxy"
)

// ExportC exports p through the C data interface without copying. The
// exported schema carries the type of p but not its name. Memory allocated by
// Go must stay reachable until the consumer calls the release callbacks.
func ExportC(p *proxy.Proxy, out *cdata.CArrowArray, outSchema *cdata.CArrowSchema) error {
	data, err := ToArrayData(p)
	if err != nil {
		return errors.Wrap(err, "export c array")
	}
	defer data.Release()
	arr := array.MakeFromData(data)
	defer arr.Release()
	cdata.ExportArrowArray(arr, out, outSchema)
	return nil
}

// ImportC moves a C array and its schema into an owned proxy. The C array is
// released once the proxy and every buffer it shares are released.
func ImportC(arr *cdata.CArrowArray, schema *cdata.CArrowSchema, opts ...proxy.Option) (*proxy.Proxy, error) {
	field, imported, err := cdata.ImportCArray(arr, schema)
	if err != nil {
		return nil, errors.Wrap(err, "import c array")
	}
	defer imported.Release()
	return FromArrayData(imported.Data(), field, opts...)
}
