package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"nub.ac.bd/transport/internal/modules/user/dto"
	user "nub.ac.bd/transport/internal/modules/user/service"
	"nub.ac.bd/transport/pkg/apperror"
	"nub.ac.bd/transport/pkg/response"
	"nub.ac.bd/transport/pkg/validator"
)

const maxPhotoSize = 2 << 20

type UserHandler struct {
	service    user.UserService
	cookieName string
}

func NewUserHandler(service user.UserService, cookieName string) *UserHandler {
	return &UserHandler{service: service, cookieName: cookieName}
}

func (h *UserHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", true, true)
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	u, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusCreated, u)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	maxAge := int(resp.ExpiresIn - time.Now().Unix())
	h.setTokenCookie(c, resp.AccessToken, maxAge)
	response.Data(c, http.StatusOK, resp)
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	response.Data(c, http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	u, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, u)
}

func (h *UserHandler) UploadPhoto(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("photo file is required"))
		return
	}
	if fileHeader.Size > maxPhotoSize {
		response.ResponseError(c, apperror.BadRequest("photo must be at most 2MB"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("failed to read photo"))
		return
	}
	defer file.Close()

	u, err := h.service.UploadPhoto(c.Request.Context(), userID, dto.PhotoFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, u)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, true)
}

func (h *UserHandler) RequestResetOTP(c *gin.Context) {
	var req dto.RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	if err := h.service.RequestPasswordResetOTP(c.Request.Context(), req.Email); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, "OTP sent to your email")
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	if err := h.service.ResetPasswordWithOTP(c.Request.Context(), req); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, "Password updated successfully")
}

func (h *UserHandler) AdminResetPassword(c *gin.Context) {
	password, err := h.service.AdminResetPassword(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, password)
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	u, err := h.service.ChangeRole(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Data(c, http.StatusOK, u)
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	var filter dto.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	if filter.ForDropdown {
		options, err := h.service.GetUserOptions(c.Request.Context())
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		response.All(c, options)
		return
	}

	users, err := h.service.GetAllUsers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.All(c, users)
}
