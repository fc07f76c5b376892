package ginstructstream

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const swaggerCDN = "https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/"

// DocsConfig configures the Swagger UI page.
type DocsConfig struct {
	// OpenAPIURL is the URL to the OpenAPI spec JSON
	OpenAPIURL string
	// Title is the HTML page title
	Title string
	// AssetsURL is the base URL of the swagger-ui-dist assets
	AssetsURL string
}

// Docs returns a handler serving Swagger UI for the spec at openAPIURL.
//
//	api.Register(router, "/characters", extractor, character)
//	router.GET("/openapi.json", api.OpenAPIHandler())
//	router.GET("/docs", ginstructstream.Docs("/openapi.json"))
func Docs(openAPIURL string) gin.HandlerFunc {
	return DocsWithConfig(DocsConfig{OpenAPIURL: openAPIURL})
}

// DocsWithConfig is Docs with a custom configuration.
func DocsWithConfig(cfg DocsConfig) gin.HandlerFunc {
	if cfg.Title == "" {
		cfg.Title = "Extraction API"
	}
	if cfg.AssetsURL == "" {
		cfg.AssetsURL = swaggerCDN
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <link type="text/css" rel="stylesheet" href="%[1]sswagger-ui.css">
    <title>%[2]s</title>
</head>
<body>
<div id="swagger-ui"></div>
<script src="%[1]sswagger-ui-bundle.js"></script>
<script>
const ui = SwaggerUIBundle({
    url: '%[3]s',
    dom_id: '#swagger-ui',
    deepLinking: true,
})
</script>
</body>
</html>`, cfg.AssetsURL, cfg.Title, cfg.OpenAPIURL)

	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	}
}
