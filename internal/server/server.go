// Package server hosts a GitHub snapshot over HTTP so terminals without API
// access still have data to show.
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lunarcatowo/termfolio/internal/github"
)

var snapshotFiles = []string{
	github.ProfileFile,
	github.ReposFile,
	github.LanguagesFile,
	github.AvatarFile,
}

// New builds the router serving the snapshot in dir. store may be nil to
// disable visit tracking.
func New(dir string, store *Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if store != nil {
		r.Use(trackVisits(store))
	}

	for _, name := range snapshotFiles {
		path := filepath.Join(dir, name)
		r.GET("/"+name, func(c *gin.Context) {
			if _, err := os.Stat(path); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": name + " has not been synced"})
				return
			}
			c.Header("Cache-Control", "public, max-age=300")
			c.File(path)
		})
	}

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		files := gin.H{}
		ready := true
		for _, name := range snapshotFiles {
			_, err := os.Stat(filepath.Join(dir, name))
			files[name] = err == nil
			if err != nil && name != github.AvatarFile {
				ready = false
			}
		}
		status := "ok"
		if !ready {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "files": files})
	})
	api.GET("/stats", func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "visit tracking disabled"})
			return
		}
		stats, err := store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})
	return r
}

// trackVisits records snapshot fetches, skipping unrouted paths, the API and
// clients that send Do Not Track.
func trackVisits(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.FullPath() == "" || strings.HasPrefix(path, "/api/") || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}
		store.recordAsync(c.ClientIP(), c.GetHeader("User-Agent"), path)
		c.Next()
	}
}
