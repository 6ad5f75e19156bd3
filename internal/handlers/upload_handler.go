package handlers

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"updigital/internal/models"
	"updigital/internal/services"
	"updigital/internal/utils/logger"
)

type UploadHandler struct {
	db      *gorm.DB
	storage *services.S3Service
	log     *logger.Logger
}

func NewUploadHandler(db *gorm.DB, storage *services.S3Service) *UploadHandler {
	return &UploadHandler{
		db:      db,
		storage: storage,
		log:     logger.New("UPLOAD"),
	}
}

// UploadAvatar stores an avatar image in S3 and attaches its URL to
// the authenticated account.
// @Summary Upload avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Avatar image"
// @Success 200 {object} map[string]string "Avatar URL"
// @Failure 400 {object} map[string]string "No file provided"
// @Router /uploads/avatar [post]
func (h *UploadHandler) UploadAvatar(c echo.Context) error {
	if h.storage == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Storage not configured"})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file provided"})
	}

	key, err := h.storage.UploadFile(c.Request().Context(), file, types.ObjectCannedACLPublicRead)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to upload file"})
	}

	url, err := h.storage.GetSignedURL(c.Request().Context(), key, 24*time.Hour)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to sign URL"})
	}

	userID, _ := c.Get("userID").(string)
	if err := h.db.Model(&models.User{}).Where("id = ?", userID).Update("avatar", url).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update avatar"})
	}

	h.log.Success("Avatar uploaded for user %s", userID)
	return c.JSON(http.StatusOK, map[string]string{"avatar": url})
}
