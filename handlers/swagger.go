package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves a small OpenAPI description of the ops endpoints.
//   - GET /swagger/index.html -> HTML page that loads the document
//   - GET /swagger/doc.json   -> the OpenAPI document
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>news-worker ops</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "news-worker", "version": "v0.1.0" },
  "paths": {
    "/health": {
      "get": { "summary": "Liveness check", "responses": { "200": { "description": "process is up" } } }
    },
    "/ready": {
      "get": {
        "summary": "Readiness check covering MongoDB and, when configured, Redis",
        "responses": { "200": { "description": "all dependencies reachable" }, "503": { "description": "a dependency is down" } }
      }
    },
    "/state": {
      "get": {
        "summary": "Work currently in flight",
        "responses": { "200": { "description": "state", "content": { "application/json": { "schema": {"type":"object","properties":{"populating":{"type":"integer"},"refreshingAll":{"type":"integer"},"refreshingOne":{"type":"integer"},"lastPopulated":{"type":"string","format":"date-time"}}}}}}}
      }
    },
    "/metrics": {
      "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition format" } } }
    }
  }
}`
