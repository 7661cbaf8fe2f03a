package shopping

import (
	"Foodgram-Backend/domain"
	"io"
	"text/template"
)

var listTemplate = template.Must(template.New("shopping_list").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`Shopping list for {{ .Date.Format "2006-01-02" }}
{{ if .Items }}
Recipes:
{{- range .Recipes }}
  * {{ .Name }}
{{- end }}

Ingredients:
{{- range $i, $item := .Items }}
  {{ inc $i }}. {{ $item.Name }} ({{ $item.MeasurementUnit }}): {{ $item.TotalAmount }}
{{- end }}
{{ else }}
Your shopping cart is empty.
{{ end -}}
`))

// Render writes the plain-text shopping list attachment.
func Render(w io.Writer, list domain.ShoppingList) error {
	return listTemplate.Execute(w, list)
}
