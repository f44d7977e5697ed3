package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"genie/internal/logger"
)

const webDir = "./web"

// setupStaticFiles serves the chat widget from webDir when it exists. Unknown
// API paths always get a JSON 404.
func setupStaticFiles(router *gin.Engine, log logger.Logger) {
	index := filepath.Join(webDir, "index.html")
	_, err := os.Stat(index)
	hasFrontend := err == nil

	if hasFrontend {
		router.Static("/static", filepath.Join(webDir, "static"))
		router.StaticFile("/", index)
		log.Info("serving frontend assets", map[string]interface{}{"dir": webDir})
	} else {
		log.Info("no frontend assets found, serving API only", map[string]interface{}{"dir": webDir})
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") || !hasFrontend {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		// SPA routing
		c.File(index)
	})
}
