package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Simhateja17/whatsapp/models"
	"github.com/Simhateja17/whatsapp/utils"
)

type UserController struct {
	DB *gorm.DB
}

const searchLimit = 20

// Search looks up users by username or email prefix, excluding the
// requesting user. An empty query returns an empty list without touching
// the database; the client already guards this, the server just mirrors it.
func (u *UserController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	currentUserID := c.Query("currentUserId")
	if query == "" {
		c.JSON(http.StatusOK, []models.User{})
		return
	}

	like := query + "%"
	users := make([]models.User, 0)
	err := u.DB.
		Where("(username LIKE ? OR email LIKE ?) AND id <> ?", like, like, currentUserID).
		Limit(searchLimit).
		Find(&users).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to search users")
		return
	}
	c.JSON(http.StatusOK, users)
}
