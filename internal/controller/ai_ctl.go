package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sellerhub/internal/api/dto"
	"sellerhub/internal/middleware"
	"sellerhub/internal/service"
)

type AIController struct {
	aiService   *service.AIService
	syncService *service.SyncService
}

func NewAIController(aiService *service.AIService, syncService *service.SyncService) *AIController {
	return &AIController{aiService: aiService, syncService: syncService}
}

// Chat sends a message to the assistant. The reply comes back split into
// prose and confirmable actions; nothing executes here.
// @Summary Chat with the assistant
// @Tags AI
// @Param body body dto.ChatReq true "message and history"
// @Router /api/ai/chat [post]
func (ctrl *AIController) Chat(c *gin.Context) {
	var req dto.ChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid request body: " + err.Error()})
		return
	}

	result, err := ctrl.aiService.Chat(c.Request.Context(),
		middleware.GetUserID(c), middleware.GetOrganizationID(c),
		req.History, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, result)
}

// ExecuteAction runs one user-confirmed assistant proposal through the
// normal sync path.
// @Summary Execute a confirmed assistant action
// @Tags AI
// @Param body body dto.ExecuteActionReq true "action"
// @Router /api/ai/actions/execute [post]
func (ctrl *AIController) ExecuteAction(c *gin.Context) {
	var req dto.ExecuteActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid request body: " + err.Error()})
		return
	}

	report, err := ctrl.aiService.ExecuteAction(c.Request.Context(),
		middleware.GetUserID(c), req.Action, ctrl.syncService)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, report)
}
