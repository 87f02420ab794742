package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventmap/internal/helpers"
	"github.com/joshua-takyi/eventmap/internal/models"
	"github.com/joshua-takyi/eventmap/internal/services"
)

func CreateSession(sessions *services.SessionService, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Create()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, s.ID, 0, "/", "", secureCookie, true)
		c.JSON(http.StatusCreated, models.SuccessResponse(s.Info(), "session created"))
	}
}

func GetSession(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sessionParam(c, sessions)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(s.Info(), ""))
	}
}

func DeleteSession(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := helpers.StringTrim(c.Param("id"))
		if err := sessions.Close(id); err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse("session not found"))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "session closed"))
	}
}

// PublishSelection puts a selection on the session's bus as if a card had
// been clicked.
func PublishSelection(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sessionParam(c, sessions)
		if !ok {
			return
		}

		var ev models.SelectionEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("eventId must be a positive integer"))
			return
		}

		delivered := s.Select(ev.EventID)
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"eventId":   ev.EventID,
			"delivered": delivered,
		}, ""))
	}
}

func sessionParam(c *gin.Context, sessions *services.SessionService) (*services.Session, bool) {
	s, err := sessions.Get(helpers.StringTrim(c.Param("id")))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse("session not found"))
		} else {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		}
		return nil, false
	}
	return s, true
}
