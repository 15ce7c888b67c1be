package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Simhateja17/whatsapp/metrics"
	"github.com/Simhateja17/whatsapp/models"
	"github.com/Simhateja17/whatsapp/services"
	"github.com/Simhateja17/whatsapp/utils"
)

type AuthController struct {
	DB     *gorm.DB
	OTP    *services.OTPService
	Tokens *services.TokenService
}

// RequestOTP generates a one-time code for the email and hands the
// plaintext back to the caller, who relays it to the user's inbox through
// the mail provider. Requesting again supersedes any outstanding code for
// the same email. The account row is created here so verify only needs
// {email, otp}.
func (a *AuthController) RequestOTP(c *gin.Context) {
	var input struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "name and a valid email are required")
		return
	}

	var user models.User
	err := a.DB.Where("email = ?", input.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{ID: uuid.NewString(), Username: input.Name, Email: input.Email}
		err = a.DB.Create(&user).Error
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to prepare sign-in")
		return
	}

	code, err := a.OTP.Issue(c.Request.Context(), input.Email)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to generate OTP")
		return
	}
	metrics.OTPIssued.Inc()

	c.JSON(http.StatusOK, gin.H{
		"name":  input.Name,
		"otp":   code,
		"email": input.Email,
	})
}

// VerifyOTP checks the submitted code and returns a signed bearer token.
// The code is consumed on success; a superseded or expired code fails.
func (a *AuthController) VerifyOTP(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "email and otp are required")
		return
	}

	if err := a.OTP.Verify(c.Request.Context(), input.Email, input.OTP); err != nil {
		if errors.Is(err, services.ErrInvalidOTP) {
			utils.RespondError(c, http.StatusBadRequest, "invalid or expired code")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "failed to verify OTP")
		return
	}

	var user models.User
	if err := a.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, "no sign-in request for this email")
		return
	}

	token, err := a.Tokens.GenerateToken(user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
