// Package pdf renders customer product-list submissions.
package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	DefaultTitle    = "Elitechem Product List"
	DefaultFileName = "Elitechem-Product-List.pdf"
	ContentType     = "application/pdf"
)

// Renderer turns a submitted product list into a document.
type Renderer interface {
	RenderProductList(products map[string]any, submittedAt time.Time) ([]byte, error)
}

type ProductListRenderer struct {
	title string
}

var _ Renderer = (*ProductListRenderer)(nil)

func NewProductListRenderer(title string) *ProductListRenderer {
	if title == "" {
		title = DefaultTitle
	}
	return &ProductListRenderer{title: title}
}

// RenderProductList writes one "key: value" line per submitted field, sorted by key.
func (r *ProductListRenderer) RenderProductList(products map[string]any, submittedAt time.Time) ([]byte, error) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(50, 50, 50)
	doc.SetAutoPageBreak(true, 60)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 24, tr(r.title), "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 16, tr("Submitted on: "+submittedAt.Format("Jan 2, 2006 3:04 PM MST")), "", 1, "C", false, 0, "")
	doc.Ln(10)

	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 19, "Submitted Response", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	keys := make([]string, 0, len(products))
	for k := range products {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		doc.MultiCell(0, 16, tr(fmt.Sprintf("%s: %s", k, formatValue(products[k]))), "", "L", false)
	}

	doc.Ln(10)
	doc.CellFormat(0, 16, "Thank you for your submission.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("[pdf RenderProductList] %w", err)
	}
	return buf.Bytes(), nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64, bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
