package api

import (
	"time"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"

	"github.com/ringg-play/ringgrank/internal/models"
	"github.com/ringg-play/ringgrank/internal/store"
)

// Publisher fans accepted scores out to downstream consumers. Optional.
type Publisher interface {
	Publish(entry models.ScoreEntry) error
}

// ConfigureRoutes wires the HTTP surface. responseCache may be nil to disable
// read-path caching; publisher may be nil when no downstream pipeline is
// configured.
func ConfigureRoutes(r *gin.Engine, manager *store.Manager, queries *store.QueryService, publisher Publisher, responseCache persistence.CacheStore, cacheTTL time.Duration) {
	r.GET("/api/health", HealthHandler())

	v1 := r.Group("/api/v1")
	{
		v1.POST("/scores", SubmitScoreHandler(manager, publisher))

		games := v1.Group("/games/:gameId")
		{
			games.GET("/leaders", cached(responseCache, cacheTTL, GetTopLeadersHandler(queries)))
			games.GET("/users/:userId/rank", cached(responseCache, cacheTTL, GetUserRankHandler(queries)))
		}
	}
}

func cached(cacheStore persistence.CacheStore, ttl time.Duration, handler gin.HandlerFunc) gin.HandlerFunc {
	if cacheStore == nil {
		return handler
	}
	return cache.CachePage(cacheStore, ttl, handler)
}
