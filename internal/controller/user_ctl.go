package controller

import (
	"github.com/gin-gonic/gin"

	"sellerhub/internal/middleware"
	"sellerhub/internal/service"
)

type UserController struct {
	userService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// Me returns the account behind the caller's token.
// @Summary Current operator profile
// @Tags User
// @Router /api/me [get]
func (ctrl *UserController) Me(c *gin.Context) {
	user, err := ctrl.userService.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"role":            user.Role,
		"organization_id": user.OrganizationID,
	})
}
