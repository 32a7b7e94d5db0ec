package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ringg-play/ringgrank/internal/logging"
	"github.com/ringg-play/ringgrank/internal/models"
	"github.com/ringg-play/ringgrank/internal/store"
)

// SubmitScoreHandler returns a handler for submitting a score
// @Summary      Submit a player's score
// @Description  Validates and records a new score for a player in a game
// @Tags         scores
// @Accept       json
// @Produce      json
// @Param        score  body  models.ScoreSubmissionRequest  true  "Score submission"
// @Success      202
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/scores [post]
func SubmitScoreHandler(manager *store.Manager, publisher Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.ScoreSubmissionRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid score data"})
			return
		}

		if err := request.Validate(time.Now().UnixMilli()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry := request.Entry()
		if err := manager.RecordScore(entry); err != nil {
			logging.Error("Failed to record score", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record score"})
			return
		}

		if publisher != nil {
			if err := publisher.Publish(entry); err != nil {
				// The score is durable in the WAL; losing a fan-out message
				// only delays the analytics archive.
				logging.Error("Failed to publish score", "error", err)
			}
		}

		c.Status(http.StatusAccepted)
	}
}

func statusForQueryError(err error) int {
	switch {
	case errors.Is(err, models.ErrGameNotFound), errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidWindow), errors.Is(err, models.ErrInvalidScore):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
