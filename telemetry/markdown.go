package telemetry

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pthm-cable/benchmarker/bench"
)

const (
	textColumns  = 3 // name, description, category
	statColumns  = 6 // mean, ratio, std dev, std error, min, max
	columnCount  = textColumns + 3*statColumns
	missingValue = "NA"
)

// row is one line of the results table.
type row struct {
	cells  []string
	spacer bool
}

func titleRows() []row {
	stats := []string{"Mean", "Ratio", "StdDev", "StdError", "min", "max"}

	first := []string{"Name", "Description", "Category"}
	second := []string{"", "", ""}
	for _, group := range [][2]string{{"time", "method"}, {"count", ""}, {"time", "frame"}} {
		first = append(first, group[0], group[1])
		first = append(first, make([]string, statColumns-2)...)
		second = append(second, stats...)
	}
	return []row{{cells: first}, {cells: second}}
}

// statCells formats one metric of a result in unit u.
func statCells(d bench.DataGroup, u Unit) []string {
	return []string{
		u.Scale(d.Mean).String(),
		FormatRatio(d.Ratio),
		u.Scale(d.StdDev).String(),
		u.Scale(d.StdError).String(),
		u.Scale(d.Min).String(),
		u.Scale(d.Max).String(),
	}
}

// columnUnits picks one time unit per time column from the smallest mean
// across every category.
func columnUnits(groups []bench.CategoryGroup) (method, frame Unit) {
	minMethod, minFrame := -1.0, -1.0
	for _, g := range groups {
		for _, p := range g.Processed {
			if minMethod < 0 || p.MethodTime.Mean < minMethod {
				minMethod = p.MethodTime.Mean
			}
			if minFrame < 0 || p.FrameTime.Mean < minFrame {
				minFrame = p.FrameTime.Mean
			}
		}
	}
	return TimeUnit(minMethod), TimeUnit(minFrame)
}

func resultRows(groups []bench.CategoryGroup) []row {
	method, frame := columnUnits(groups)

	var rows []row
	for i, g := range groups {
		if i > 0 {
			rows = append(rows, row{spacer: true})
		}
		for _, p := range g.Processed {
			cells := []string{p.Metadata.Name(), p.Metadata.Description, g.Name}
			cells = append(cells, statCells(p.MethodTime, method)...)
			cells = append(cells, statCells(p.Count, CountUnit)...)
			cells = append(cells, statCells(p.FrameTime, frame)...)
			rows = append(rows, row{cells: cells})
		}
	}
	return rows
}

func (r row) cell(i int) string {
	if r.spacer {
		return ""
	}
	if i >= len(r.cells) {
		return missingValue
	}
	return r.cells[i]
}

// render pads every cell to its column width in runes. Text columns are left aligned,
// numeric columns right aligned; spacer rows are drawn with dashes.
func (r row) render(widths []int) string {
	pad := " "
	if r.spacer {
		pad = "-"
	}
	cols := make([]string, columnCount)
	for i := range cols {
		v := r.cell(i)
		fill := strings.Repeat(pad, widths[i]-utf8.RuneCountInString(v))
		if i < textColumns {
			v += fill
		} else {
			v = fill + v
		}
		cols[i] = pad + v + pad
	}
	return "|" + strings.Join(cols, "|") + "|"
}

func columnWidths(rows []row) []int {
	widths := make([]int, columnCount)
	for _, r := range rows {
		for i := range widths {
			if n := utf8.RuneCountInString(r.cell(i)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

// WriteMarkdown renders the application block, metadata and a padded results
// table of every category.
func WriteMarkdown(w io.Writer, app Application, groups []bench.CategoryGroup, meta []string) error {
	if len(groups) == 0 {
		slog.Warn("no categories to print")
	}

	rows := titleRows()
	rows = append(rows, row{spacer: true})
	rows = append(rows, resultRows(groups)...)
	widths := columnWidths(rows)

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "**Application**")
	fmt.Fprintf(bw, "- GoVersion:%s\n", app.GoVersion)
	fmt.Fprintf(bw, "- Platform:%s\n", app.Platform)
	fmt.Fprintf(bw, "- NumCPU:%d\n", app.NumCPU)
	fmt.Fprintf(bw, "- Hostname:%s\n", app.Hostname)

	if len(meta) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw)
		for _, m := range meta {
			fmt.Fprintf(bw, "- %s\n", m)
		}
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "**Results**")
	fmt.Fprintln(bw)
	for _, r := range rows {
		fmt.Fprintln(bw, r.render(widths))
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}
