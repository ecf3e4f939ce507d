// Package receipt renders a placed order for people: a plain-text receipt
// for notifications and the HTML bill page.
package receipt

import (
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"

	"github.com/shopspring/decimal"

	"github.com/prudhivi99/bookstore/internal/models"
)

// BillTemplate is the template name registered by HTML.
const BillTemplate = "bill.html"

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

var funcs = map[string]any{"money": money}

const textSource = `Order #{{.Order.ID}}
Customer: {{.Order.CustomerName}} <{{.Order.CustomerEmail}}>
Placed: {{.Order.CreatedAt.UTC.Format "2006-01-02 15:04 MST"}}
{{range .Lines}}
{{.Title}} by {{.Author}}
  {{.Quantity}} x {{money .PriceAtPurchase}} = {{money .Subtotal}}
{{- end}}

Total: {{money .Order.Total}}
`

const htmlSource = `<!DOCTYPE html>
<html>
<head><title>Bill #{{.Order.ID}}</title></head>
<body>
<h1>Bill #{{.Order.ID}}</h1>
<p>{{.Order.CustomerName}} &lt;{{.Order.CustomerEmail}}&gt;</p>
<p>Placed {{.Order.CreatedAt.UTC.Format "2006-01-02 15:04 MST"}}</p>
<table>
<tr><th>Title</th><th>Author</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>
{{- range .Lines}}
<tr><td>{{.Title}}</td><td>{{.Author}}</td><td>{{.Quantity}}</td><td>{{money .PriceAtPurchase}}</td><td>{{money .Subtotal}}</td></tr>
{{- end}}
</table>
<p><strong>Total: {{money .Order.Total}}</strong></p>
</body>
</html>
`

var textTmpl = texttemplate.Must(texttemplate.New("receipt.txt").Funcs(funcs).Parse(textSource))

// WriteText renders the plain-text receipt.
func WriteText(w io.Writer, r *models.Receipt) error {
	return textTmpl.Execute(w, r)
}

// HTML returns the bill page template, named BillTemplate, for gin's SetHTMLTemplate.
func HTML() *htmltemplate.Template {
	return htmltemplate.Must(htmltemplate.New(BillTemplate).Funcs(funcs).Parse(htmlSource))
}
