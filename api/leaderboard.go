package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ringg-play/ringgrank/internal/models"
	"github.com/ringg-play/ringgrank/internal/store"
)

const (
	minLeaderboardLimit     = 1
	maxLeaderboardLimit     = 1000
	defaultLeaderboardLimit = "10"
)

// GetTopLeadersHandler returns a handler for getting top leaders
// @Summary      Get top leaders for a game
// @Description  Returns the top scoring players for a specific game, all-time or within a sliding window
// @Tags         leaderboard
// @Accept       json
// @Produce      json
// @Param        gameId  path      int     true   "Game ID"
// @Param        limit   query     int     false  "Number of leaders to return (1-1000)" default(10)
// @Param        window  query     string  false  "Sliding window key (empty for all-time)" example(24h)
// @Success      200  {array}   models.LeaderboardEntryResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/games/{gameId}/leaders [get]
func GetTopLeadersHandler(queries *store.QueryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, err := strconv.ParseInt(c.Param("gameId"), 10, 64)
		if err != nil || gameID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Game ID must be a positive number"})
			return
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", defaultLeaderboardLimit))
		if err != nil || limit < minLeaderboardLimit || limit > maxLeaderboardLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Limit must be between 1 and 1000"})
			return
		}

		window := c.DefaultQuery("window", "")
		if !models.ValidWindowKey(window) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Window format is invalid. Examples: '24h', '7d', '30m'"})
			return
		}

		leaders, err := queries.TopLeaders(gameID, limit, window)
		if err != nil {
			c.JSON(statusForQueryError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, leaders)
	}
}

// GetUserRankHandler returns a handler for getting a player's rank
// @Summary      Get a player's rank
// @Description  Returns the rank, score and percentile for a specific player in a game
// @Tags         leaderboard
// @Accept       json
// @Produce      json
// @Param        gameId  path      int     true   "Game ID"
// @Param        userId  path      int     true   "User ID"
// @Param        window  query     string  false  "Sliding window key (empty for all-time)" example(24h)
// @Success      200  {object}  models.UserRankResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/games/{gameId}/users/{userId}/rank [get]
func GetUserRankHandler(queries *store.QueryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, err := strconv.ParseInt(c.Param("gameId"), 10, 64)
		if err != nil || gameID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Game ID must be a positive number"})
			return
		}

		userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
		if err != nil || userID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User ID must be a positive number"})
			return
		}

		window := c.DefaultQuery("window", "")
		if !models.ValidWindowKey(window) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Window format is invalid. Examples: '24h', '7d', '30m'"})
			return
		}

		rank, err := queries.UserRank(gameID, userID, window)
		if err != nil {
			c.JSON(statusForQueryError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, rank)
	}
}
