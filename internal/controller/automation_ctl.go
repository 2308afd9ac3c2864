package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"sellerhub/internal/api/dto"
	"sellerhub/internal/middleware"
	"sellerhub/internal/model"
	"sellerhub/internal/service"
)

type AutomationController struct {
	automationService *service.AutomationService
}

func NewAutomationController(automationService *service.AutomationService) *AutomationController {
	return &AutomationController{automationService: automationService}
}

// CreateRule adds a standing rule for the caller's organization.
// @Summary Create automation rule
// @Tags Automation
// @Param body body dto.CreateRuleReq true "rule"
// @Router /api/automation/rules [post]
func (ctrl *AutomationController) CreateRule(c *gin.Context) {
	var req dto.CreateRuleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid request body: " + err.Error()})
		return
	}

	rule := &model.AutomationRule{
		OrganizationID: middleware.GetOrganizationID(c),
		UserID:         middleware.GetUserID(c),
		RuleType:       req.RuleType,
		IsActive:       true,
		Config:         datatypes.JSON(req.Config),
	}
	if err := ctrl.automationService.CreateRule(c.Request.Context(), rule); err != nil {
		writeError(c, err)
		return
	}
	ok(c, rule)
}

// ListRules returns the organization's rules.
// @Summary List automation rules
// @Tags Automation
// @Router /api/automation/rules [get]
func (ctrl *AutomationController) ListRules(c *gin.Context) {
	rules, err := ctrl.automationService.ListRules(c.Request.Context(), middleware.GetOrganizationID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, rules)
}

// SetRuleActive toggles a rule on or off.
// @Summary Enable or disable a rule
// @Tags Automation
// @Param id path int true "rule id"
// @Param body body dto.SetRuleActiveReq true "state"
// @Router /api/automation/rules/{id}/active [put]
func (ctrl *AutomationController) SetRuleActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid rule id"})
		return
	}

	var req dto.SetRuleActiveReq
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "is_active is required"})
		return
	}

	if err := ctrl.automationService.SetRuleActive(c.Request.Context(), id, *req.IsActive); err != nil {
		writeError(c, err)
		return
	}
	ok(c, nil)
}

// DeleteRule removes a rule. Its audit log is retained.
// @Summary Delete a rule
// @Tags Automation
// @Param id path int true "rule id"
// @Router /api/automation/rules/{id} [delete]
func (ctrl *AutomationController) DeleteRule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid rule id"})
		return
	}

	if err := ctrl.automationService.DeleteRule(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, nil)
}

// RuleHistory returns recent audit entries for one rule.
// @Summary Rule action history
// @Tags Automation
// @Param id path int true "rule id"
// @Param limit query int false "max entries" default(50)
// @Router /api/automation/rules/{id}/history [get]
func (ctrl *AutomationController) RuleHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid rule id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := ctrl.automationService.RuleHistory(c.Request.Context(), id, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, entries)
}

// Run evaluates all active rules immediately instead of waiting for the
// next scheduled pass.
// @Summary Trigger an automation pass now
// @Tags Automation
// @Router /api/automation/run [post]
func (ctrl *AutomationController) Run(c *gin.Context) {
	ctrl.automationService.RunPass(c.Request.Context())
	ok(c, nil)
}
