package handler

import (
	"net/http"
	"reviewpromax/internal/dto"
	"reviewpromax/internal/middleware"
	"reviewpromax/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.DeleteUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}

	if err := h.userService.DeleteUser(ctx, middleware.UserID(c), req.UserID); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, &dto.DeleteUserResponse{
		Success: true,
		Message: "User deleted successfully",
	})
}
