package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventmap/internal/assets"
	"github.com/joshua-takyi/eventmap/internal/models"
)

type BundleLoader interface {
	Load(ctx context.Context) (*assets.Bundle, error)
}

// MapScript and MapStyle serve the mapping library from the shared loader so
// the browser never reaches the CDN itself.
func MapScript(loader BundleLoader) gin.HandlerFunc {
	return serveAsset(loader, func(b *assets.Bundle) assets.Asset { return b.Script })
}

func MapStyle(loader BundleLoader) gin.HandlerFunc {
	return serveAsset(loader, func(b *assets.Bundle) assets.Asset { return b.Style })
}

func serveAsset(loader BundleLoader, pick func(*assets.Bundle) assets.Asset) gin.HandlerFunc {
	return func(c *gin.Context) {
		bundle, err := loader.Load(c.Request.Context())
		if err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse("map library unavailable"))
			return
		}
		a := pick(bundle)
		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, a.ContentType, a.Body)
	}
}

// Health reports liveness plus how many page sessions are open.
func Health(service string, sessions interface{ Len() int }) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "OK",
			"service":  service,
			"sessions": sessions.Len(),
		})
	}
}
