package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bazaar/marketplace-api/internal/core/ports"
)

// AdminHandler serves account management endpoints restricted to admins.
type AdminHandler struct {
	userService ports.UserService
}

func NewAdminHandler(userService ports.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// GetUser returns any account by id.
//
// @Summary      Get user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  Response{data=userResponse}
// @Failure      401     {object}  Response
// @Failure      403     {object}  Response
// @Failure      404     {object}  Response
// @Router       /admin/users/{userId} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	user, err := h.userService.GetProfile(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user retrieved successfully", toUserResponse(user))
}

// SetStatus activates or deactivates an account.
//
// @Summary      Activate or deactivate user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string            true  "User ID"
// @Param        body    body      setStatusRequest  true  "New status"
// @Success      200     {object}  Response{data=userResponse}
// @Failure      400     {object}  Response
// @Failure      401     {object}  Response
// @Failure      403     {object}  Response
// @Failure      404     {object}  Response
// @Router       /admin/users/{userId}/status [patch]
func (h *AdminHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userService.SetActive(c.Request().Context(), c.Param("userId"), *req.IsActive)
	if err != nil {
		return err
	}

	msg := "user activated successfully"
	if !user.IsActive {
		msg = "user deactivated successfully"
	}
	return respond(c, http.StatusOK, msg, toUserResponse(user))
}
