// Command arrowlayout prints the C data interface layout of an array built
// from JSON values: format, buffers with their roles and sizes, validity bits,
// children and dictionary.
//
//	arrowlayout -format u -values '["a", null, "ccc"]' -slice-start 1
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/VanDung-dev/columnar/bridge"
	"github.com/VanDung-dev/columnar/descriptor"
	"github.com/VanDung-dev/columnar/layout"
	"github.com/VanDung-dev/columnar/metrics"
	"github.com/VanDung-dev/columnar/proxy"
)

func main() {
	logger := level.NewFilter(log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)), level.AllowInfo())
	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		level.Error(logger).Log("msg", "arrowlayout failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, logger log.Logger) error {
	fs := flag.NewFlagSet("arrowlayout", flag.ContinueOnError)
	fs.SetOutput(out)
	format := fs.String("format", "i", "format string of a non-nested type")
	values := fs.String("values", "[]", "JSON array of values, null for missing ones")
	name := fs.String("name", "", "field name")
	start := fs.Int64("slice-start", 0, "first element of the printed window")
	end := fs.Int64("slice-end", -1, "end of the printed window, -1 for the array length")
	showMetrics := fs.Bool("metrics", false, "print descriptor counters after the layout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s := descriptor.NewArrowSchema(*format, *name, arrow.Metadata{}, descriptor.FlagNullable, nil, nil)
	dt, err := descriptor.DataTypeOf(s)
	descriptor.ReleaseSchema(s)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	mem := memory.NewGoAllocator()
	arr, _, err := array.FromJSON(mem, dt, strings.NewReader(*values))
	if err != nil {
		return errors.Wrap(err, "parse values")
	}
	defer arr.Release()

	p, err := bridge.FromArrayData(arr.Data(), arrow.Field{Name: *name, Type: dt, Nullable: true},
		proxy.WithAllocator(mem), proxy.WithLogger(logger), proxy.WithMetrics(metrics.NewMetrics(reg, "columnar")))
	if err != nil {
		return err
	}
	defer p.Release()

	if *start != 0 || *end >= 0 {
		if *end < 0 {
			*end = p.Length()
		}
		if *end > p.Length() {
			return errors.Wrapf(proxy.ErrOutOfRange, "window [%d, %d) of %d elements", *start, *end, p.Length())
		}
		v, err := p.SliceView(*start, *end)
		if err != nil {
			return err
		}
		defer v.Release()
		p = v
	}

	printProxy(out, p, "")

	if *showMetrics {
		families, err := reg.Gather()
		if err != nil {
			return errors.Wrap(err, "gather metrics")
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
				return err
			}
		}
	}
	return nil
}

func printProxy(w io.Writer, p *proxy.Proxy, indent string) {
	fmt.Fprintf(w, "%sformat=%q name=%q length=%d null_count=%d offset=%d\n",
		indent, p.Format(), p.Name(), p.Length(), p.NullCount(), p.Offset())

	roles, err := layout.ExpectedBufferRoles(p.DataType())
	for i, b := range p.Buffers() {
		role := "unknown"
		switch {
		case err != nil:
		case i < len(roles.Buffers):
			role = roles.Buffers[i].String()
		case roles.Variadic:
			role = layout.Data.String()
		}
		if b == nil {
			fmt.Fprintf(w, "%s  buffer[%d] %s absent\n", indent, i, role)
			continue
		}
		fmt.Fprintf(w, "%s  buffer[%d] %s %d bytes\n", indent, i, role, len(b))
	}

	if bm := p.ValidityBitmap(); bm != nil {
		var sb strings.Builder
		for i, valid := range bm.All() {
			if int64(i) < p.Offset() {
				continue
			}
			if valid {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		fmt.Fprintf(w, "%s  validity %s\n", indent, sb.String())
	}

	for i, c := range p.Children() {
		if c == nil {
			fmt.Fprintf(w, "%s  child[%d] unset\n", indent, i)
			continue
		}
		fmt.Fprintf(w, "%s  child[%d]\n", indent, i)
		printProxy(w, c, indent+"    ")
	}
	if d := p.Dictionary(); d != nil {
		fmt.Fprintf(w, "%s  dictionary\n", indent)
		printProxy(w, d, indent+"    ")
	}
}
