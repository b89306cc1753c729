package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/stylehub/stylehub/internal/app"
	"github.com/stylehub/stylehub/internal/domain"
	"github.com/stylehub/stylehub/internal/webserver"
	"github.com/stylehub/stylehub/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contactRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"max=64"`
	Subject   string `json:"subject" validate:"required,max=255"`
	Message   string `json:"message" validate:"required"`
}

func registerContactRoutes() {
	webserver.ApiPOST("/contact", submitContact)
	webserver.ApiGET("/admin/messages", listMessages, webserver.RequireAdmin)
	webserver.ApiPUT("/admin/messages/:id/read", markMessageRead, webserver.RequireAdmin)
}

// submitContact stores a contact form message and notifies the admin out of band
func submitContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", nil)
	}
	req.FirstName = sanitizeInput(req.FirstName)
	req.LastName = sanitizeInput(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = sanitizeInput(req.Phone)
	req.Subject = sanitizeInput(req.Subject)
	req.Message = sanitizeInput(req.Message)
	if err := c.Validate(&req); err != nil {
		return handleValidationError(c, err)
	}

	msg := domain.ContactMessage{
		ID:        common.UUIDint64(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    domain.MessageStatusNew,
	}
	if err := GetDB(c).Create(&msg).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save message", storageDetail(c, err))
	}

	webserver.GetAppContext(c).Bus().Publish(app.TopicContactCreated, msg)
	zap.S().Infof("contact message %d from %s", msg.ID, msg.Email)
	return ok(c, map[string]interface{}{
		"success": true,
		"message": "Message sent successfully",
	})
}

func listMessages(c echo.Context) error {
	var rows []domain.ContactMessage
	if err := GetDB(c).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query messages", storageDetail(c, err))
	}
	if rows == nil {
		rows = []domain.ContactMessage{}
	}
	return ok(c, rows)
}

func markMessageRead(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid message ID", nil)
	}
	var msg domain.ContactMessage
	if err := GetDB(c).Where("id = ?", id).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Message not found", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query message", storageDetail(c, err))
	}
	if msg.Status != domain.MessageStatusRead {
		if err := GetDB(c).Model(&msg).Update("status", domain.MessageStatusRead).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update message", storageDetail(c, err))
		}
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}
