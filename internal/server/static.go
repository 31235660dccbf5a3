package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves a built single-page frontend. Unknown non-API paths
// fall back to index.html so client-side routes survive a reload.
func (s *Server) mountStatic() {
	dir := s.opts.StaticDir
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})
	if dir == "" {
		s.logger.Info("static directory not configured; API only mode")
		return
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", "path", dir, "error", err)
		return
	}

	indexPath := filepath.Join(dir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", "path", indexPath, "error", err)
		return
	}

	s.engine.GET("/", func(c *gin.Context) {
		c.File(indexPath)
	})
	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		c.File(indexPath)
	})

	for _, sub := range []string{"assets", "static"} {
		assets := filepath.Join(dir, sub)
		if _, err := os.Stat(assets); err == nil {
			s.engine.StaticFS("/"+sub, gin.Dir(assets, false))
		}
	}

	for _, name := range []string{"favicon.ico", "manifest.json", "robots.txt"} {
		file := filepath.Join(dir, name)
		if _, err := os.Stat(file); err == nil {
			s.engine.StaticFile("/"+name, file)
		}
	}
}
