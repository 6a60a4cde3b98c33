package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/spk-college/techfest-service/internal/models"
	"github.com/spk-college/techfest-service/internal/repositories"
	"github.com/spk-college/techfest-service/internal/services"
	"github.com/spk-college/techfest-service/internal/storage"
	"github.com/spk-college/techfest-service/internal/validator"
)

// UserHandler handles user administration and profile photo uploads.
type UserHandler struct {
	BaseHandler
	userService services.UserService
	uploader    storage.Uploader
	validator   *validator.Validator
}

func NewUserHandler(userService services.UserService, uploader storage.Uploader, validator *validator.Validator, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
		uploader:    uploader,
		validator:   validator,
	}
}

// GetUser godoc
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} services.UserResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid id parameter"})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), requesterID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users with filtering and pagination
// @Tags users
// @Produce json
// @Param role query string false "Role filter"
// @Param department query string false "Department filter"
// @Param search query string false "Name/email search"
// @Success 200 {object} services.UserListResponse
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filter := repositories.UserFilter{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	if department := c.Query("department"); department != "" {
		filter.Department = &department
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	filter.Limit = size
	filter.Offset = (page - 1) * size

	users, err := h.userService.List(c.Request.Context(), requesterID, filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateUser godoc
// @Summary Update a user profile
// @Description Role and department changes are admin-only
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body services.UpdateUserRequest true "Fields to update"
// @Success 200 {object} services.UserResponse
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid id parameter"})
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), requesterID, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Param id path string true "User ID"
// @Success 204
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid id parameter"})
		return
	}

	h.LogRequest(c, "Deleting user", "target_id", id)

	if err := h.userService.Delete(c.Request.Context(), requesterID, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListEventHeads godoc
// @Summary List event heads available for assignment
// @Tags users
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /users/event-heads [get]
func (h *UserHandler) ListEventHeads(c *gin.Context) {
	requesterID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	heads, err := h.userService.ListEventHeads(c.Request.Context(), requesterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, heads)
}

// UploadPhoto godoc
// @Summary Upload the authenticated user's profile photo
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Photo (jpeg/png/gif/webp, max 5MB)"
// @Success 200 {object} services.UserResponse
// @Security BearerAuth
// @Router /users/me/photo [post]
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Image storage is not configured",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file field",
			Details: err.Error(),
		})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := storage.ValidateImage(fileHeader.Filename, contentType, fileHeader.Size); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid image",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to read uploaded file",
		})
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request.Context(), "profile-photos", fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Image upload failed",
			Details: err.Error(),
		})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), userID, userID, &services.UpdateUserRequest{
		PhotoURL: &url,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
