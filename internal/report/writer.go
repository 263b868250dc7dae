package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	mdbuilder "github.com/nao1215/markdown"

	"gounivar/adapters/excel"
	"gounivar/internal/errors"
)

// Format is an output encoding for a table
type Format string

const (
	FormatRaw      Format = "raw"
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatXLSX     Format = "xlsx"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

var formats = []Format{FormatRaw, FormatCSV, FormatTSV, FormatXLSX, FormatMarkdown, FormatHTML, FormatJSON}

// ParseFormat accepts a format name, case-insensitive; "md" is markdown
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "md" {
		return FormatMarkdown, nil
	}
	for _, f := range formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", errors.UnsupportedFormat(fmt.Sprintf("output format %q", name))
}

// FormatFromPath picks the format from a file extension, defaulting to raw
func FormatFromPath(path string) Format {
	ext := strings.ToLower(path)
	if i := strings.LastIndexByte(ext, '.'); i >= 0 {
		if f, err := ParseFormat(ext[i+1:]); err == nil {
			return f
		}
		if ext[i+1:] == "htm" {
			return FormatHTML
		}
	}
	return FormatRaw
}

// ContentType is the MIME type of a format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Write encodes the table in the given format
func Write(w io.Writer, table Table, format Format) error {
	switch format {
	case FormatRaw, "":
		return writeRaw(w, table)
	case FormatCSV:
		return writeDelimited(w, table, ',')
	case FormatTSV:
		return writeDelimited(w, table, '\t')
	case FormatXLSX:
		return excel.WriteTable(w, sheetName(table.Title), table.Rows)
	case FormatMarkdown:
		return writeMarkdown(w, table)
	case FormatHTML:
		return writeHTML(w, table)
	case FormatJSON:
		return writeJSON(w, table)
	default:
		return errors.UnsupportedFormat(fmt.Sprintf("output format %q", format))
	}
}

func writeRaw(w io.Writer, table Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if table.Title != "" {
		fmt.Fprintln(tw, table.Title)
	}
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	return tw.Flush()
}

func writeDelimited(w io.Writer, table Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.WriteAll(table.Rows); err != nil {
		return errors.Wrap(err, "failed to write table")
	}
	return nil
}

func writeMarkdown(w io.Writer, table Table) error {
	md := mdbuilder.NewMarkdown(w)
	if table.Title != "" {
		md.H2(table.Title)
		md.PlainText("")
	}
	header := table.Header()
	body := make([][]string, 0, len(table.Body()))
	for _, row := range table.Body() {
		body = append(body, pad(row, len(header)))
	}
	md.Table(mdbuilder.TableSet{Header: header, Rows: body})
	return md.Build()
}

func writeHTML(w io.Writer, table Table) error {
	var buf bytes.Buffer
	if err := writeMarkdown(&buf, table); err != nil {
		return err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	_, err := w.Write(markdown.ToHTML(buf.Bytes(), p, renderer))
	return err
}

func writeJSON(w io.Writer, table Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Title  string     `json:"title,omitempty"`
		Header []string   `json:"header"`
		Rows   [][]string `json:"rows"`
	}{table.Title, table.Header(), nonNil(table.Body())})
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	return append(append([]string{}, row...), make([]string, width-len(row))...)
}

func nonNil(rows [][]string) [][]string {
	if rows == nil {
		return [][]string{}
	}
	return rows
}

// sheetName trims a title to the 31 characters a worksheet name allows
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, title)
	if name == "" {
		return excel.DefaultSheet
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
