package prediction

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrolytics/maize-advisor/internal/model"
	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

// RecommendationReader is the read slice of the recommendation store the API
// exposes.
type RecommendationReader interface {
	RecommendationsBySession(ctx context.Context, sessionID uint) ([]entities.Recommendation, error)
}

// NewRouter wires the prediction HTTP surface.
func NewRouter(svc *Service, preds PredictionStore, recs RecommendationReader, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogging(logger))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	v1 := r.Group("/v1")

	v1.POST("/sessions/:id/predictions", func(c *gin.Context) {
		id, ok := sessionID(c)
		if !ok {
			return
		}
		pred, err := svc.Predict(c.Request.Context(), id, time.Now().UTC())
		if err != nil {
			writeErr(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, pred)
	})

	v1.GET("/sessions/:id/predictions", func(c *gin.Context) {
		id, ok := sessionID(c)
		if !ok {
			return
		}
		history, err := svc.History(c.Request.Context(), id)
		if err != nil {
			writeErr(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, history)
	})

	v1.GET("/sessions/:id/recommendations", func(c *gin.Context) {
		id, ok := sessionID(c)
		if !ok {
			return
		}
		items, err := recs.RecommendationsBySession(c.Request.Context(), id)
		if err != nil {
			writeErr(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, items)
	})

	v1.GET("/predictions/:id", func(c *gin.Context) {
		pred, err := preds.PredictionByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeErr(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, pred)
	})

	return r
}

func sessionID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid session id",
			"message": "id must be a valid unsigned integer",
		})
		return 0, false
	}
	return uint(id), true
}

func writeErr(c *gin.Context, logger *slog.Logger, err error) {
	var nf *model.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "message": nf.Error()})
		return
	}
	var pe *model.PredictionError
	if errors.As(err, &pe) {
		logger.Error("prediction failed", "session_id", pe.SessionID, "error", pe.Err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed", "message": pe.Error()})
		return
	}
	logger.Error("request failed", "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// requestLogging logs one line per request with status and latency.
func requestLogging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("request completed",
			"method", method,
			"path", path,
			"status_code", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
