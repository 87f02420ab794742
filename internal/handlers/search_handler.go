package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventmap/internal/helpers"
	"github.com/joshua-takyi/eventmap/internal/models"
	"github.com/joshua-takyi/eventmap/internal/services"
)

// SessionCookie carries the page session id when the form does not.
const SessionCookie = "session_id"

// SearchEvents runs one search submission. When the request belongs to a page
// session, the result also drives that session's map and card list.
func SearchEvents(ss *services.SearchService, sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form models.SearchForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid search form"))
			return
		}

		tracker := services.NewSearchTracker()
		session := lookupSession(c, sessions, form.Session)
		if session != nil {
			tracker = session.Tracker
		}

		ctx := c.Request.Context()
		result := ss.Submit(ctx, tracker, ss.Criteria(form))
		if session != nil {
			session.Apply(ctx, result)
		}

		status := http.StatusOK
		if result.Failed() {
			status = http.StatusBadGateway
		}
		c.JSON(status, models.NewSearchResponse(result))
	}
}

func lookupSession(c *gin.Context, sessions *services.SessionService, id string) *services.Session {
	id = helpers.StringTrim(id)
	if id == "" {
		id, _ = c.Cookie(SessionCookie)
	}
	if id == "" || sessions == nil {
		return nil
	}
	s, err := sessions.Get(id)
	if err != nil {
		// searches still work without a session, they just drive no map
		_ = c.Error(err).SetType(gin.ErrorTypePrivate)
		return nil
	}
	return s
}
