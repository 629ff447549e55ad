package routes

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"autofill-platform/internal/config"
	"autofill-platform/internal/logger"
	"autofill-platform/internal/queue"
	"autofill-platform/middleware"
	"autofill-platform/models"
	"autofill-platform/services"
	"autofill-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var pdfMagic = []byte("%PDF")

func SetupDocumentRoutes(router *gin.Engine, cfg *config.Config, db *mongo.Database, asynqClient *asynq.Client, ingest *services.IngestService) {
	documents := db.Collection("documents")

	group := router.Group("/api/documents")
	group.Use(middleware.OwnerScope())

	group.POST("/upload", func(c *gin.Context) {
		ownerID := middleware.GetOwnerID(c)

		form, err := c.MultipartForm()
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid multipart form", gin.H{"error": err.Error()})
			return
		}

		files := form.File["files"]
		if len(files) == 0 {
			utils.RespondWithBadRequest(c, "No files provided", nil)
			return
		}

		acks := make([]models.UploadAck, 0, len(files))
		for _, fh := range files {
			acks = append(acks, handleUpload(c, cfg, documents, asynqClient, ownerID, fh))
		}

		c.JSON(http.StatusAccepted, gin.H{"documents": acks})
	})

	group.GET("", func(c *gin.Context) {
		ownerID := middleware.GetOwnerID(c)

		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
		offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}

		filter := bson.M{"owner_id": ownerID}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		total, err := documents.CountDocuments(c.Request.Context(), filter)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to count documents", nil)
			return
		}

		cursor, err := documents.Find(c.Request.Context(), filter,
			options.Find().SetSort(bson.M{"uploaded_at": -1}).SetSkip(offset).SetLimit(limit))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list documents", nil)
			return
		}
		defer cursor.Close(c.Request.Context())

		docs := make([]models.Document, 0)
		if err := cursor.All(c.Request.Context(), &docs); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode documents", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"documents": docs,
			"total":     total,
			"limit":     limit,
			"offset":    offset,
		})
	})

	group.GET("/:id/status", func(c *gin.Context) {
		ownerID := middleware.GetOwnerID(c)
		docID := c.Param("id")

		var doc models.Document
		err := documents.FindOne(c.Request.Context(),
			bson.M{"_id": docID, "owner_id": ownerID}).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			utils.RespondWithNotFound(c, "Document not found")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load document", nil)
			return
		}

		resp := gin.H{
			"id":       doc.ID,
			"filename": doc.Filename,
			"status":   doc.Status,
		}
		if doc.ErrorMessage != "" {
			resp["error_message"] = doc.ErrorMessage
		}
		if doc.Status == models.StatusCompleted {
			resp["metadata"] = doc.Metadata
			resp["processed_at"] = doc.ProcessedAt
		}

		c.JSON(http.StatusOK, resp)
	})

	group.DELETE("/:id", func(c *gin.Context) {
		ownerID := middleware.GetOwnerID(c)
		docID := c.Param("id")

		err := ingest.Delete(c.Request.Context(), ownerID, docID)
		if errors.Is(err, models.ErrNotFound) {
			utils.RespondWithNotFound(c, "Document not found")
			return
		}
		if err != nil {
			logger.Error("Document delete failed", "doc_id", docID, "error", err.Error())
			utils.RespondWithInternalError(c, "Failed to delete document", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "document deleted", "id": docID})
	})
}

func handleUpload(c *gin.Context, cfg *config.Config, documents *mongo.Collection, asynqClient *asynq.Client, ownerID string, fh *multipart.FileHeader) models.UploadAck {
	ack := models.UploadAck{Filename: fh.Filename, Size: fh.Size}

	if fh.Size > cfg.MaxFileSize {
		ack.Status = models.StatusRejected
		ack.Error = "file exceeds maximum allowed size"
		return ack
	}

	mimeType := fh.Header.Get("Content-Type")
	if !isAllowedType(cfg, mimeType, fh.Filename) {
		ack.Status = models.StatusRejected
		ack.Error = "unsupported file type"
		return ack
	}

	src, err := fh.Open()
	if err != nil {
		ack.Status = models.StatusRejected
		ack.Error = "failed to read upload"
		return ack
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		ack.Status = models.StatusRejected
		ack.Error = "failed to read upload"
		return ack
	}

	// PDFs must actually start with the PDF signature
	if mimeType == "application/pdf" && !bytes.HasPrefix(data, pdfMagic) {
		ack.Status = models.StatusRejected
		ack.Error = "file is not a valid PDF"
		return ack
	}

	docID := uuid.New().String()
	path := filepath.Join(cfg.FileStorageDir, ownerID, docID+filepath.Ext(fh.Filename))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		ack.Status = models.StatusRejected
		ack.Error = "failed to store file"
		return ack
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		ack.Status = models.StatusRejected
		ack.Error = "failed to store file"
		return ack
	}

	now := time.Now()
	doc := models.Document{
		ID:         docID,
		OwnerID:    ownerID,
		Filename:   fh.Filename,
		MimeType:   mimeType,
		FilePath:   path,
		Size:       fh.Size,
		Status:     models.StatusPending,
		UploadedAt: now,
		UpdatedAt:  now,
	}

	if _, err := documents.InsertOne(c.Request.Context(), doc); err != nil {
		os.Remove(path)
		ack.Status = models.StatusRejected
		ack.Error = "failed to record document"
		return ack
	}

	task, err := queue.NewIngestTask(queue.IngestPayload{
		OwnerID:  ownerID,
		DocID:    docID,
		Filename: fh.Filename,
	})
	if err == nil {
		var info *asynq.TaskInfo
		info, err = asynqClient.EnqueueContext(c.Request.Context(), task)
		if err == nil {
			ack.TaskID = info.ID
		}
	}
	if err != nil {
		logger.Error("Failed to enqueue ingestion", "doc_id", docID, "error", err.Error())
		documents.UpdateOne(c.Request.Context(),
			bson.M{"_id": docID, "owner_id": ownerID},
			bson.M{"$set": bson.M{
				"status":        models.StatusFailed,
				"error_message": "failed to queue for processing",
				"updated_at":    time.Now(),
			}})
		ack.Status = models.StatusFailed
		ack.Error = "failed to queue for processing"
		return ack
	}

	ack.ID = docID
	ack.Status = models.StatusPending
	return ack
}

func isAllowedType(cfg *config.Config, mimeType, filename string) bool {
	for _, allowed := range cfg.AllowedTypes {
		if mimeType == allowed {
			return true
		}
	}
	// Some browsers omit or mangle the content type, fall back to extension
	switch filepath.Ext(filename) {
	case ".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".txt", ".csv", ".xlsx":
		return true
	}
	return false
}
