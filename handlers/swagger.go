package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the backend.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>soundrift — Swagger</title>
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

// Minimal OpenAPI document describing the public endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "soundrift", "version": "v0.1.0" },
  "paths": {
    "/api/upload": {
      "post": {
        "summary": "Upload a track (multipart: title, artist_name|artist, uploader_name?, userId?, audio, cover?)",
        "responses": { "201": { "description": "track created" }, "400": { "description": "missing title or audio" } }
      }
    },
    "/api/tracks": {
      "get": { "summary": "List recent tracks", "responses": { "200": { "description": "tracks" } } }
    },
    "/api/playlists": {
      "get": { "summary": "List the caller's playlists with ordered tracks", "responses": { "200": { "description": "playlists" }, "401": { "description": "unauthenticated" } } },
      "post": { "summary": "Create a playlist", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"}}}}}}, "responses": { "201": { "description": "created" } } }
    },
    "/api/playlists/{playlistId}/add-track": {
      "post": { "summary": "Add a track (idempotent; /add is a legacy alias)", "responses": { "200": { "description": "success + inserted flag" }, "403": { "description": "not the owner" } } }
    },
    "/api/playlists/{playlistId}/remove-track": {
      "post": { "summary": "Remove a track (idempotent; /remove is a legacy alias)", "responses": { "200": { "description": "success + deletedRows" }, "403": { "description": "not the owner" } } }
    },
    "/api/me": {
      "get": { "summary": "Get the resolved local user", "responses": { "200": { "description": "user" }, "401": { "description": "unauthenticated" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
