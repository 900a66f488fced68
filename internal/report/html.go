package report

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/quotelens/internal/metrics"
	"github.com/ppiankov/quotelens/internal/model"
)

// Chart layout in SVG user units
const (
	chartWidth  = 640
	barHeight   = 18
	barGap      = 6
	labelWidth  = 180
	valueMargin = 60
)

// Page is a static report page
type Page struct {
	Title    string
	Sections []Section
}

// Section is one table with an optional bar chart.
// Chart names the numeric column to plot, empty for no chart.
type Section struct {
	Heading string
	Note    string
	Table   model.Table
	Chart   string
}

const pageStyle = `body{font-family:sans-serif;margin:2em;color:#222}
table{border-collapse:collapse;margin:1em 0}
th,td{border:1px solid #ccc;padding:4px 8px;text-align:left}
td.num{text-align:right}
svg text{font-size:12px}`

// RenderHTML writes a self-contained HTML page
func RenderHTML(w io.Writer, p Page) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	root.AppendChild(head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(withText(element(atom.Title), p.Title))
	head.AppendChild(withText(element(atom.Style), pageStyle))

	body := element(atom.Body)
	root.AppendChild(body)
	body.AppendChild(withText(element(atom.H1), p.Title))

	for _, s := range p.Sections {
		body.AppendChild(renderSection(s))
	}

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func renderSection(s Section) *html.Node {
	sec := element(atom.Section)
	heading := s.Heading
	if heading == "" {
		heading = s.Table.Title
	}
	if heading != "" {
		sec.AppendChild(withText(element(atom.H2), heading))
	}
	if s.Note != "" {
		sec.AppendChild(withText(element(atom.P), s.Note))
	}
	if s.Chart != "" {
		if chart := barChart(s.Table, s.Chart); chart != nil {
			sec.AppendChild(chart)
		}
	}
	sec.AppendChild(renderTable(s.Table))
	return sec
}

func renderTable(t model.Table) *html.Node {
	table := element(atom.Table)

	thead := element(atom.Thead)
	tr := element(atom.Tr)
	for _, c := range t.Columns {
		tr.AppendChild(withText(element(atom.Th), c))
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, row := range t.Rows {
		tr := element(atom.Tr)
		for i := range t.Columns {
			var cell any
			if i < len(row) {
				cell = row[i]
			}
			td := element(atom.Td)
			if _, ok := cellValue(cell); ok {
				td.Attr = append(td.Attr, attr("class", "num"))
			}
			tr.AppendChild(withText(td, cellDisplay(cell)))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}

// barChart draws one horizontal bar per row for the named column.
// Rows with a null value are skipped. Negative values extend left from
// a shared zero line. Returns nil when nothing can be plotted.
func barChart(t model.Table, column string) *html.Node {
	col := t.Column(column)
	if col < 0 || len(t.Columns) == 0 {
		return nil
	}

	type bar struct {
		label string
		value float64
	}
	var bars []bar
	minV, maxV := 0.0, 0.0
	for _, row := range t.Rows {
		if col >= len(row) {
			continue
		}
		v, ok := cellValue(row[col])
		if !ok {
			continue
		}
		bars = append(bars, bar{label: cellDisplay(row[0]), value: v})
		minV = min(minV, v)
		maxV = max(maxV, v)
	}
	if len(bars) == 0 {
		return nil
	}

	span := maxV - minV
	if span == 0 {
		span = 1
	}
	plot := float64(chartWidth - labelWidth - valueMargin)
	zero := float64(labelWidth) + plot*(-minV)/span
	height := len(bars)*(barHeight+barGap) + barGap

	svg := element(atom.Svg,
		attr("xmlns", "http://www.w3.org/2000/svg"),
		attr("width", strconv.Itoa(chartWidth)),
		attr("height", strconv.Itoa(height)),
		attr("role", "img"),
	)
	svg.AppendChild(withText(element(atom.Title), column))

	for i, b := range bars {
		y := barGap + i*(barHeight+barGap)
		width := plot * abs(b.value) / span
		x := zero
		if b.value < 0 {
			x = zero - width
		}

		svg.AppendChild(withText(&html.Node{
			Type: html.ElementNode,
			Data: "text",
			Attr: []html.Attribute{
				attr("x", "0"),
				attr("y", strconv.Itoa(y+barHeight-4)),
			},
		}, b.label))
		svg.AppendChild(&html.Node{
			Type: html.ElementNode,
			Data: "rect",
			Attr: []html.Attribute{
				attr("x", formatUnit(x)),
				attr("y", strconv.Itoa(y)),
				attr("width", formatUnit(width)),
				attr("height", strconv.Itoa(barHeight)),
				attr("fill", barColor(b.value)),
			},
		})
		svg.AppendChild(withText(&html.Node{
			Type: html.ElementNode,
			Data: "text",
			Attr: []html.Attribute{
				attr("x", formatUnit(zero+plot*maxV/span+4)),
				attr("y", strconv.Itoa(y+barHeight-4)),
			},
		}, humanizeValue(b.value)))
	}
	return svg
}

// humanizeValue labels a bar. Large counts are abbreviated to keep labels short.
func humanizeValue(v float64) string {
	if v >= 10000 {
		return metrics.Abbreviate(v)
	}
	if v == float64(int64(v)) {
		return cellDisplay(int(v))
	}
	return cellDisplay(v)
}

func barColor(v float64) string {
	if v < 0 {
		return "#c0504d"
	}
	return "#4f81bd"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func formatUnit(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return n
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}
