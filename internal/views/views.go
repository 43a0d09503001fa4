// Package views renders bill list markup from display data. Rendering is a
// pure function of its input; no view here performs I/O or mutates state.
package views

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/billedhq/expense-client/internal/domain/entity"
	"github.com/billedhq/expense-client/internal/store"
)

var rowsTemplate = template.Must(template.New("rows").Parse(`<table id="bills" data-testid="tbody">
{{- range . }}
<tr>
<td>{{ .Type }}</td>
<td>{{ .Name }}</td>
<td data-testid="bill-date">{{ .FormattedDate }}</td>
<td>{{ .Amount }} €</td>
<td class="{{ .StatusClass }}">{{ .StatusLabel }}</td>
<td><div class="icon-eye" data-testid="icon-eye" data-bill-url="{{ .FileURL }}"></div></td>
</tr>
{{- end }}
</table>`))

var lightboxTemplate = template.Must(template.New("lightbox").Parse(`<div class="modal-body">
<h2>Justificatif</h2>
<img src="{{ .URL }}" alt="Bill" style="width: {{ .Width }}px;" />
</div>`))

// BillRows renders the bill table body for an ordered list of display bills
func BillRows(bills []entity.DisplayBill) (string, error) {
	var sb strings.Builder
	if err := rowsTemplate.Execute(&sb, bills); err != nil {
		return "", fmt.Errorf("failed to render bill rows: %w", err)
	}
	return sb.String(), nil
}

// ErrorPanel renders the fixed-format error region. The upstream error
// text appears verbatim so a rejected fetch with message "Erreur 404"
// stays findable as such in the rendered output.
func ErrorPanel(err error) string {
	message := ""
	if err != nil {
		message = err.Error()
		var te *store.TransportError
		if errors.As(err, &te) {
			message = te.Message
		}
	}
	return fmt.Sprintf(`<div data-testid="error-message" class="error-panel">%s</div>`, template.HTMLEscapeString(message))
}

// LoadingPanel renders the interim state shown while the list is fetched
func LoadingPanel() string {
	return `<div data-testid="loading-message">Loading...</div>`
}

// lightboxData feeds the lightbox template
type lightboxData struct {
	URL   string
	Width int
}

// LightboxBody renders the modal body showing an attachment. The width is
// forced inline from the modal body width, and the URL is not validated;
// an empty or malformed URL still renders, showing no meaningful image.
func LightboxBody(fileURL string, modalBodyWidth int) (string, error) {
	width := modalBodyWidth / 2
	var sb strings.Builder
	if err := lightboxTemplate.Execute(&sb, lightboxData{URL: fileURL, Width: width}); err != nil {
		return "", fmt.Errorf("failed to render lightbox: %w", err)
	}
	return sb.String(), nil
}
