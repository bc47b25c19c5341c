package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/httpresp"
	ucAccount "github.com/Horridhunk/carmannagement/internal/usecase/account"
)

type AuthHandler struct {
	registerClient *ucAccount.RegisterClient
	createWasher   *ucAccount.CreateWasher
	login          *ucAccount.Login
	requestReset   *ucAccount.RequestPasswordReset
	resetPassword  *ucAccount.ResetPassword
	devMode        bool
}

func NewAuthHandler(
	registerClient *ucAccount.RegisterClient,
	createWasher *ucAccount.CreateWasher,
	login *ucAccount.Login,
	requestReset *ucAccount.RequestPasswordReset,
	resetPassword *ucAccount.ResetPassword,
	devMode bool,
) *AuthHandler {
	return &AuthHandler{
		registerClient: registerClient,
		createWasher:   createWasher,
		login:          login,
		requestReset:   requestReset,
		resetPassword:  resetPassword,
		devMode:        devMode,
	}
}

// --------- Requests ---------

type RegisterClientRequest struct {
	Email           string `json:"email" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type RegisterWasherRequest struct {
	Email           string   `json:"email" binding:"required"`
	FirstName       string   `json:"first_name" binding:"required"`
	LastName        string   `json:"last_name" binding:"required"`
	Phone           string   `json:"phone" binding:"required"`
	Password        string   `json:"password" binding:"required"`
	ConfirmPassword string   `json:"confirm_password" binding:"required"`
	HourlyRate      *float64 `json:"hourly_rate"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) RegisterClient(c *gin.Context) {
	var req RegisterClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.registerClient.Execute(c.Request.Context(), ucAccount.RegisterClientInput{
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, client)
}

func (h *AuthHandler) RegisterWasher(c *gin.Context) {
	var req RegisterWasherRequest
	if !bindJSON(c, &req) {
		return
	}

	// self-signup runs without a principal
	washer, err := h.createWasher.Execute(c.Request.Context(), auth.Principal{}, ucAccount.WasherInput{
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		HourlyRate:      req.HourlyRate,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, washer)
}

// Login authenticates the role named in the path.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.login.Execute(c.Request.Context(), auth.Role(c.Param("role")), req.Login, req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, res)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.requestReset.Execute(c.Request.Context(), req.Email)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	resp := gin.H{"message": "If an account exists for that email, a reset link has been sent."}
	if h.devMode && link != "" {
		resp["reset_link"] = link
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resetPassword.Execute(c.Request.Context(), c.Param("token"), req.Password, req.ConfirmPassword); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset. You can now log in."})
}
