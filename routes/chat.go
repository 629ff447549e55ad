package routes

import (
	"io"
	"net/http"

	"autofill-platform/middleware"
	"autofill-platform/models"
	"autofill-platform/services"
	"autofill-platform/utils"

	"github.com/gin-gonic/gin"
)

func SetupChatRoutes(router *gin.Engine, chat *services.ChatService) {
	group := router.Group("/api/chat")
	group.Use(middleware.OwnerScope())

	group.POST("", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ownerID := middleware.GetOwnerID(c)
		resp, err := chat.Answer(c.Request.Context(), ownerID, req.Message)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to answer", nil)
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	group.POST("/stream", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ownerID := middleware.GetOwnerID(c)

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		events := chat.AnswerStream(c.Request.Context(), ownerID, req.Message)

		c.Stream(func(w io.Writer) bool {
			ev, ok := <-events
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return ev.Type != models.EventDone && ev.Type != models.EventError
		})
	})
}
