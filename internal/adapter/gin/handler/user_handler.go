package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-service/internal/adapter/gin/response"
	"user-crud-service/internal/usecase/user"
	pkgerrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

const (
	msgFetchUsersFailed = "Error fetching users"
	msgFetchUserFailed  = "Error fetching user"
	msgCreateFailed     = "Error creating user"
	msgUpdateFailed     = "Error updating user"
	msgDeleteFailed     = "Error deleting user"
	msgUserNotFound     = "User not found"
	msgUserCreated      = "User created successfully"
	msgUserUpdated      = "User updated successfully"
	msgUserDeleted      = "User deleted successfully"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.UserUsecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.UserUsecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// userBody is the request body for create and update. A field that is absent
// or null is treated as not supplied.
type userBody struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Age   *int    `json:"age"`
}

func bindUserBody(c *gin.Context) (userBody, error) {
	var body userBody
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return body, nil
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		return body, err
	}
	return body, nil
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{Query: c.Query("q")})
	if err != nil {
		h.fail(c, err, msgFetchUsersFailed)
		return
	}

	response.List(c, http.StatusOK, resp.Users, resp.Count)
}

// GetUser handles GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	u, err := h.uc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, msgFetchUserFailed)
		return
	}

	response.OK(c, http.StatusOK, "", u)
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	body, err := bindUserBody(c)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid create user body", zap.Error(err))
		response.Fail(c, http.StatusBadRequest, msgCreateFailed, err.Error())
		return
	}

	req := user.CreateUserRequest{Age: body.Age}
	if body.Name != nil {
		req.Name = *body.Name
	}
	if body.Email != nil {
		req.Email = *body.Email
	}

	u, err := h.uc.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, msgCreateFailed)
		return
	}

	response.OK(c, http.StatusCreated, msgUserCreated, u)
}

// UpdateUser handles PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	body, err := bindUserBody(c)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid update user body", zap.Error(err))
		response.Fail(c, http.StatusBadRequest, msgUpdateFailed, err.Error())
		return
	}

	u, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:    c.Param("id"),
		Name:  body.Name,
		Email: body.Email,
		Age:   body.Age,
	})
	if err != nil {
		h.fail(c, err, msgUpdateFailed)
		return
	}

	response.OK(c, http.StatusOK, msgUserUpdated, u)
}

// DeleteUser handles DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if _, err := h.uc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, msgDeleteFailed)
		return
	}

	response.OK(c, http.StatusOK, msgUserDeleted, nil)
}

// fail converts usecase errors to the response envelope.
func (h *UserHandler) fail(c *gin.Context, err error, failMsg string) {
	var (
		verr *pkgerrors.ValidationError
		aerr *pkgerrors.AlreadyExistsError
	)

	switch {
	case pkgerrors.IsNotFound(err):
		response.Fail(c, http.StatusNotFound, msgUserNotFound, "")
	case pkgerrors.As(err, &aerr):
		response.Fail(c, http.StatusBadRequest, aerr.Error(), "")
	case pkgerrors.As(err, &verr):
		response.Fail(c, http.StatusBadRequest, failMsg, verr.Error())
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, failMsg, err.Error())
	}
}
