package quotations

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/helios-energy/helios-admin/report"
)

var docTemplate = template.Must(template.New("quotation").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #1a1a1a; }
  h1 { font-size: 20px; margin-bottom: 0; }
  .meta { color: #555; margin-bottom: 24px; }
  table { width: 100%; border-collapse: collapse; margin-top: 16px; }
  th, td { border-bottom: 1px solid #ddd; padding: 6px 8px; text-align: left; }
  th { background: #f4f4f4; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 16px; width: 40%; margin-left: auto; }
  .totals td { border: none; padding: 2px 8px; }
  .totals tr.grand td { font-weight: bold; border-top: 2px solid #1a1a1a; }
</style>
</head>
<body>
<h1>Quotation {{.DocNumber}}</h1>
<p class="meta">
  Date: {{.QuoteDate.Format "2006-01-02"}} &middot;
  Valid until: {{.ValidUntil.Format "2006-01-02"}} &middot;
  Status: {{.Status}}
</p>
<table>
  <tr>
    <th>#</th><th>Description</th><th class="num">Qty</th><th>UOM</th>
    <th class="num">Unit Price</th><th class="num">Discount</th><th class="num">Tax</th><th class="num">Total</th>
  </tr>
  {{range .Lines}}
  <tr>
    <td>{{.LineOrder}}</td>
    <td>{{.Description}}</td>
    <td class="num">{{printf "%.2f" .Quantity}}</td>
    <td>{{.UOM}}</td>
    <td class="num">{{printf "%.2f" .UnitPrice}}</td>
    <td class="num">{{printf "%.2f" .DiscountAmount}}</td>
    <td class="num">{{printf "%.2f" .TaxAmount}}</td>
    <td class="num">{{printf "%.2f" .LineTotal}}</td>
  </tr>
  {{end}}
</table>
<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{printf "%.2f" .Subtotal}} {{.Currency}}</td></tr>
  <tr><td>Tax</td><td class="num">{{printf "%.2f" .TaxAmount}} {{.Currency}}</td></tr>
  <tr class="grand"><td>Total</td><td class="num">{{printf "%.2f" .TotalAmount}} {{.Currency}}</td></tr>
</table>
{{if .Notes}}<p>{{.Notes}}</p>{{end}}
</body>
</html>`))

// PDFBuilder renders quotation documents through Gotenberg.
type PDFBuilder struct {
	gotenberg *report.Client
}

// NewPDFBuilder constructs a builder backed by the given Gotenberg client.
func NewPDFBuilder(gotenberg *report.Client) *PDFBuilder {
	return &PDFBuilder{gotenberg: gotenberg}
}

// Render produces the PDF bytes for one quotation.
func (b *PDFBuilder) Render(ctx context.Context, q *Quotation) ([]byte, error) {
	var buf bytes.Buffer
	if err := docTemplate.Execute(&buf, q); err != nil {
		return nil, fmt.Errorf("execute quotation template: %w", err)
	}
	return b.gotenberg.RenderHTML(ctx, buf.String())
}
