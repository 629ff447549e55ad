package routes

import (
	"net/http"

	"autofill-platform/middleware"
	"autofill-platform/models"
	"autofill-platform/services"
	"autofill-platform/utils"

	"github.com/gin-gonic/gin"
)

const maxBulkFields = 50

type matchFieldRequest struct {
	Field models.FieldDescriptor `json:"field" binding:"required"`
}

type matchFieldsBulkRequest struct {
	Fields []models.FieldDescriptor `json:"fields" binding:"required,min=1"`
}

func SetupFieldRoutes(router *gin.Engine, matcher services.FieldMatchingService) {
	group := router.Group("/api")
	group.Use(middleware.OwnerScope())

	group.POST("/match-field", func(c *gin.Context) {
		var req matchFieldRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if req.Field.Name == "" && req.Field.Label == "" {
			utils.RespondWithBadRequest(c, "Field must have a name or label", nil)
			return
		}

		ownerID := middleware.GetOwnerID(c)
		result := matcher.MatchField(c.Request.Context(), ownerID, req.Field)

		c.JSON(http.StatusOK, result)
	})

	group.POST("/match-fields-bulk", func(c *gin.Context) {
		var req matchFieldsBulkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if len(req.Fields) > maxBulkFields {
			utils.RespondWithBadRequest(c, "Too many fields in one request",
				gin.H{"max_fields": maxBulkFields, "got": len(req.Fields)})
			return
		}

		ownerID := middleware.GetOwnerID(c)
		result := matcher.MatchFields(c.Request.Context(), ownerID, req.Fields)

		c.JSON(http.StatusOK, result)
	})
}
