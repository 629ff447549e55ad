package routes

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"

	"autofill-platform/internal/logger"
	"autofill-platform/middleware"
	"autofill-platform/models"
	"autofill-platform/services"
	"autofill-platform/utils"

	"github.com/gin-gonic/gin"
)

type analyzeWebRequest struct {
	HTML string `json:"html" binding:"required,min=1"`
}

func SetupFormRoutes(router *gin.Engine, filler *services.FormFiller, webForms *services.WebFormService) {
	group := router.Group("/api/forms")
	group.Use(middleware.OwnerScope())

	group.POST("/fill", func(c *gin.Context) {
		ownerID := middleware.GetOwnerID(c)

		fh, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "A PDF form file is required", nil)
			return
		}

		src, err := fh.Open()
		if err != nil {
			utils.RespondWithBadRequest(c, "Failed to read uploaded form", nil)
			return
		}
		defer src.Close()

		pdfData, err := io.ReadAll(src)
		if err != nil {
			utils.RespondWithBadRequest(c, "Failed to read uploaded form", nil)
			return
		}

		result, filled, err := filler.FillPDF(c.Request.Context(), ownerID, fh.Filename, pdfData)
		if err != nil {
			if errors.Is(err, models.ErrInvalidInput) {
				utils.RespondWithBadRequest(c, "PDF contains no fillable form fields", nil)
				return
			}
			if errors.Is(err, models.ErrIndexUnavailable) {
				utils.RespondWithServiceUnavailable(c, "Vector index is unavailable, try again later")
				return
			}
			logger.Error("Form fill failed", "form", fh.Filename, "error", err.Error())
			utils.RespondWithInternalError(c, "Failed to fill form", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"result":     result,
			"pdf_base64": base64.StdEncoding.EncodeToString(filled),
		})
	})

	group.POST("/analyze-web", func(c *gin.Context) {
		var req analyzeWebRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		forms, err := services.AnalyzeHTML(req.HTML)
		if err != nil {
			utils.RespondWithBadRequest(c, "Failed to parse HTML", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"forms": forms,
			"total": len(forms),
		})
	})

	group.POST("/web-autofill", func(c *gin.Context) {
		var req analyzeWebRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ownerID := middleware.GetOwnerID(c)
		result, err := webForms.Autofill(c.Request.Context(), ownerID, req.HTML)
		if err != nil {
			if errors.Is(err, models.ErrInvalidInput) {
				utils.RespondWithBadRequest(c, "No fillable fields found in HTML", nil)
				return
			}
			if errors.Is(err, models.ErrIndexUnavailable) {
				utils.RespondWithServiceUnavailable(c, "Vector index is unavailable, try again later")
				return
			}
			logger.Error("Web autofill failed", "error", err.Error())
			utils.RespondWithInternalError(c, "Failed to autofill form", nil)
			return
		}

		c.JSON(http.StatusOK, result)
	})
}
