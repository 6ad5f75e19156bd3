package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"updigital/internal/models"
	"updigital/internal/utils/logger"
)

var exportLog = logger.New("EXPORT")

type ExportHandler struct {
	db *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// ExportClients streams the caller's clients as an xlsx workbook.
// @Summary Export clients
// @Tags clients
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /clients/export [get]
func (h *ExportHandler) ExportClients(c echo.Context) error {
	userID, _ := c.Get("userID").(string)

	var clients []models.Client
	if err := h.db.Where("user_id = ? AND is_deleted = ?", userID, false).Find(&clients).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clients"})
	}

	data := generateXLSX(clients)
	if data == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate export"})
	}

	filename := fmt.Sprintf("clients-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// generateXLSX creates Excel formatted data
func generateXLSX(clients []models.Client) []byte {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			exportLog.Error("Failed to close Excel file: %v", err)
		}
	}()

	sheet := "Sheet1"
	headers := []string{
		"First Name",
		"Last Name",
		"Website",
		"Description",
		"Created",
	}

	for i, header := range headers {
		col := string(rune('A' + i))
		f.SetCellValue(sheet, col+"1", header)
	}

	for i, client := range clients {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), client.FirstName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), client.LastName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), client.Website)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), client.Description)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), client.CreatedAt.Format(time.RFC3339))
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		exportLog.Error("Failed to write Excel to buffer: %v", err)
		return nil
	}
	return buffer.Bytes()
}
