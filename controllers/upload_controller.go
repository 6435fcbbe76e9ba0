package controllers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maintainly/api-go/config"
	"github.com/maintainly/api-go/models"
	"gorm.io/gorm"
)

type UploadController struct {
	DB       *gorm.DB
	R2Client *s3.Client
	R2Config *config.R2Config
}

type PresignedURLRequest struct {
	ReportID    string `json:"reportId" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required"`
	FileType    string `json:"fileType" binding:"required,oneof=image video"`
}

type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

type AttachmentConfirmRequest struct {
	ReportID string `json:"reportId" binding:"required"`
	Key      string `json:"key" binding:"required"`
	FileName string `json:"fileName" binding:"required"`
	FileType string `json:"fileType" binding:"required,oneof=image video"`
	FileSize int64  `json:"fileSize"`
	Duration int    `json:"duration"`
}

func NewUploadController(db *gorm.DB) *UploadController {
	r2Config := config.GetR2Config()

	r2Client := s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2Config.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			r2Config.AccessKeyID,
			r2Config.SecretAccessKey,
			"",
		),
		Region: r2Config.Region,
	})

	return &UploadController{
		DB:       db,
		R2Client: r2Client,
		R2Config: r2Config,
	}
}

// GetPresignedURL issues a time-limited PUT URL for one report attachment.
// The upload itself goes straight to storage; the attachment row is only
// written after ConfirmAttachment, so a failed upload leaves the report
// intact with a partial attachment set.
func (uc *UploadController) GetPresignedURL(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req PresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !uc.isValidFileType(req.ContentType, req.FileType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type for media type"})
		return
	}
	if !uc.isValidFileSize(req.FileSize, req.FileType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds limit"})
		return
	}

	report, ok := uc.ownedReport(c, req.ReportID, actor.ID)
	if !ok {
		return
	}

	key := uc.generateFileKey(report.ID, req.FileName, req.FileType)

	presignedURL, err := uc.createPresignedPutURL(c.Request.Context(), key, req.ContentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload URL"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: PresignedURLResponse{
			UploadURL: presignedURL,
			Key:       key,
			ExpiresIn: 3600,
		},
	})
}

// ConfirmAttachment records an uploaded file against its report after
// verifying the object actually landed in storage.
func (uc *UploadController) ConfirmAttachment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req AttachmentConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, ok := uc.ownedReport(c, req.ReportID, actor.ID)
	if !ok {
		return
	}

	if _, err := uc.headObject(c.Request.Context(), req.Key); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found in storage"})
		return
	}

	var orderIndex int64
	uc.DB.Model(&models.Attachment{}).Where("report_id = ?", report.ID).Count(&orderIndex)

	attachment := models.Attachment{
		ReportID:   report.ID,
		FileName:   req.FileName,
		StorageKey: req.Key,
		FileType:   req.FileType,
		FileSize:   req.FileSize,
		Duration:   req.Duration,
		OrderIndex: int(orderIndex),
	}
	if err := uc.DB.Create(&attachment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save attachment"})
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{Success: true, Data: attachment})
}

// ResolveAttachment returns a time-limited GET URL for an attachment. The
// caller must be in the report's scope; otherwise a guessed attachment id
// would mint a signed URL for someone else's media.
func (uc *UploadController) ResolveAttachment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attachment id"})
		return
	}

	var attachment models.Attachment
	if err := uc.DB.First(&attachment, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	var report models.MaintenanceReport
	if err := uc.DB.Preload("Property").Preload("Assignment").
		First(&report, "id = ?", attachment.ReportID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	if !canViewReport(actor, &report) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	url, err := uc.createPresignedGetURL(c.Request.Context(), attachment.StorageKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create download URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "url": url, "expiresIn": 900})
}

// ownedReport loads a report and checks the caller filed it. Writes the
// error response itself on failure.
func (uc *UploadController) ownedReport(c *gin.Context, reportID string, tenantID uuid.UUID) (*models.MaintenanceReport, bool) {
	id, err := uuid.Parse(reportID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id"})
		return nil, false
	}

	var report models.MaintenanceReport
	if err := uc.DB.First(&report, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return nil, false
	}
	if report.TenantID != tenantID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil, false
	}
	return &report, true
}

// Helper functions
func (uc *UploadController) isValidFileType(contentType, fileType string) bool {
	validTypes := map[string][]string{
		"image": {
			"image/jpeg", "image/jpg", "image/png", "image/webp", "image/heic",
		},
		"video": {
			"video/mp4", "video/quicktime", "video/webm",
		},
	}

	allowed, exists := validTypes[fileType]
	if !exists {
		return false
	}
	for _, validType := range allowed {
		if contentType == validType {
			return true
		}
	}
	return false
}

func (uc *UploadController) isValidFileSize(fileSize int64, fileType string) bool {
	limits := map[string]int64{
		"image": 10 * 1024 * 1024,  // 10MB
		"video": 100 * 1024 * 1024, // 100MB
	}

	limit, exists := limits[fileType]
	if !exists {
		return false
	}
	return fileSize <= limit
}

func (uc *UploadController) generateFileKey(reportID uuid.UUID, fileName, fileType string) string {
	ext := filepath.Ext(fileName)
	id := uuid.New().String()
	timestamp := time.Now().Unix()

	return fmt.Sprintf("reports/%s/%s/%d_%s%s", reportID, fileType, timestamp, id, ext)
}

func (uc *UploadController) createPresignedPutURL(ctx context.Context, key, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(uc.R2Config.BucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presigner := s3.NewPresignClient(uc.R2Client)
	req, err := presigner.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (uc *UploadController) createPresignedGetURL(ctx context.Context, key string) (string, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(uc.R2Config.BucketName),
		Key:    aws.String(key),
	}

	presigner := s3.NewPresignClient(uc.R2Client)
	req, err := presigner.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = 15 * time.Minute
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (uc *UploadController) headObject(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	input := &s3.HeadObjectInput{
		Bucket: aws.String(uc.R2Config.BucketName),
		Key:    aws.String(key),
	}
	return uc.R2Client.HeadObject(ctx, input)
}
