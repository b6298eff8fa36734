package api

import (
	"fmt"
	"html"
	"net/http"

	"github.com/gaspardpetit/promptrelay/internal/logx"
)

// swaggerUI is the pinned swagger-ui-dist release loaded by the docs page.
const swaggerUI = "https://unpkg.com/swagger-ui-dist@5"

var docsPage = renderDocsPage()

// OpenAPIHandler serves the OpenAPI document built by OpenAPIDocument.
func OpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=300")
		if _, err := w.Write(openapiJSON); err != nil {
			logx.Log.Error().Err(err).Msg("write openapi")
		}
	}
}

// SwaggerHandler serves a Swagger UI page reading openapi.json next to it.
func SwaggerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(docsPage); err != nil {
			logx.Log.Error().Err(err).Msg("write docs page")
		}
	}
}

func renderDocsPage() []byte {
	info := OpenAPIDocument().Info
	title := html.EscapeString(fmt.Sprintf("%s %s", info.Title, info.Version))
	return []byte(fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%[1]s</title>
<link rel="stylesheet" href="%[2]s/swagger-ui.css">
</head>
<body>
<div id="docs"></div>
<script src="%[2]s/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({ url: 'openapi.json', dom_id: '#docs', deepLinking: true, supportedSubmitMethods: ['get', 'post'] });
</script>
</body>
</html>
`, title, swaggerUI))
}
