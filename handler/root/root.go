// Package root implements the handler for when / is requested. This
// endpoint shows the exporter name and version, and links to the metrics
// pages.
package root

import (
	"fmt"
	"html/template"
	"net/http"

	stamp "github.com/gebn/go-stamp/v2"
)

const (
	text = `<!DOCTYPE html>
    <html lang="en">
        <head>
            <meta charset="utf-8"/>
            <title>{{ .Name }}</title>
        </head>
        <body>
            <h1>{{ .Name }}</h1>
            <p>Scraping <code>{{ .System }}</code>.</p>
            <ul>
                <li><a href="/metrics">Array metrics</a></li>
                <li><a href="/exporter">Exporter metrics</a></li>
            </ul>
            <pre>{{ .Version }}</pre>
        </body>
    </html>`
)

var (
	parsed = template.Must(template.New("root").Parse(text))
)

type interpolations struct {
	Name    string
	System  string
	Version string
}

// Handler builds the landing page for the array known as system.
func Handler(system string) http.Handler {
	data := interpolations{
		Name:    "HPE 3PAR Exporter",
		System:  system,
		Version: stamp.Summary(),
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := parsed.Execute(w, data); err != nil {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("failed to execute template: %v\n", err)))
		}
	})
}
