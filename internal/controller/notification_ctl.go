package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sellerhub/internal/middleware"
	"sellerhub/internal/service"
)

type NotificationController struct {
	notificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// List returns the caller's notifications, newest first.
// @Summary List notifications
// @Tags Notification
// @Param limit query int false "max entries" default(50)
// @Router /api/notifications [get]
func (ctrl *NotificationController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := ctrl.notificationService.List(c.Request.Context(), middleware.GetUserID(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, notifications)
}

// MarkRead marks one notification as read.
// @Summary Mark a notification read
// @Tags Notification
// @Param id path int true "notification id"
// @Router /api/notifications/{id}/read [put]
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid notification id"})
		return
	}

	if err := ctrl.notificationService.MarkRead(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	ok(c, nil)
}
