// Package swagger serves the embedded OpenAPI description of the HTTP API.
package swagger

import (
	"context"
	"net/http"
)

// Register attaches the OpenAPI routes to mux.
// Routes:
//
//	GET /openapi.yaml -> embedded OpenAPI document
//	GET /api-docs     -> ReDoc page rendering /openapi.yaml
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})

	mux.HandleFunc("GET /api-docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})
}

// ReDoc is loaded from its CDN; only the document is embedded.
const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>kalpha API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container" spec-url="/openapi.yaml"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
  </body>
</html>`
