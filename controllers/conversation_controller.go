package controllers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Simhateja17/whatsapp/models"
	"github.com/Simhateja17/whatsapp/utils"
)

type ConversationController struct {
	DB *gorm.DB
}

// conversationView is the list shape the client renders: members plus at
// most one message, the latest, for the preview line.
type conversationView struct {
	ID       string           `json:"id"`
	Members  []models.User    `json:"members"`
	Messages []models.Message `json:"messages"`
}

// GetByID returns one conversation with its member list.
func (cc *ConversationController) GetByID(c *gin.Context) {
	id := c.Param("id")
	var conversation models.Conversation
	err := cc.DB.Preload("Members").Where("id = ?", id).First(&conversation).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, "conversation not found")
		return
	}
	c.JSON(http.StatusOK, conversation)
}

// GetMessages returns the full history of a conversation in createdAt
// order. This is the point-in-time fetch the thread merges live events into.
func (cc *ConversationController) GetMessages(c *gin.Context) {
	id := c.Param("id")
	var conversation models.Conversation
	if err := cc.DB.Where("id = ?", id).First(&conversation).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "conversation not found")
		return
	}

	messages := make([]models.Message, 0)
	err := cc.DB.
		Where("conversation_id = ?", id).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to fetch messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// ListForUser returns every conversation the user is a member of, each with
// its latest message, most recently active first.
func (cc *ConversationController) ListForUser(c *gin.Context) {
	userID := c.Param("userId")

	var ids []string
	err := cc.DB.Table("conversation_members").
		Where("user_id = ?", userID).
		Pluck("conversation_id", &ids).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to fetch conversations")
		return
	}
	views := make([]conversationView, 0, len(ids))
	if len(ids) == 0 {
		c.JSON(http.StatusOK, views)
		return
	}

	var conversations []models.Conversation
	err = cc.DB.Preload("Members").Where("id IN ?", ids).Find(&conversations).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to fetch conversations")
		return
	}

	for _, conv := range conversations {
		last := make([]models.Message, 0, 1)
		err := cc.DB.
			Where("conversation_id = ?", conv.ID).
			Order("created_at DESC").
			Limit(1).
			Find(&last).Error
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "failed to fetch conversations")
			return
		}
		views = append(views, conversationView{ID: conv.ID, Members: conv.Members, Messages: last})
	}

	sort.SliceStable(views, func(i, j int) bool {
		if len(views[i].Messages) == 0 || len(views[j].Messages) == 0 {
			return len(views[i].Messages) > len(views[j].Messages)
		}
		return views[i].Messages[0].CreatedAt.After(views[j].Messages[0].CreatedAt)
	})
	c.JSON(http.StatusOK, views)
}

// Initiate finds or creates the two-member conversation between userId1 and
// userId2. Initiating twice returns the same id.
func (cc *ConversationController) Initiate(c *gin.Context) {
	var input struct {
		UserID1 string `json:"userId1" binding:"required"`
		UserID2 string `json:"userId2" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "userId1 and userId2 are required")
		return
	}
	if input.UserID1 == input.UserID2 {
		utils.RespondError(c, http.StatusBadRequest, "cannot start a conversation with yourself")
		return
	}

	var count int64
	if err := cc.DB.Model(&models.User{}).Where("id IN ?", []string{input.UserID1, input.UserID2}).Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	if count != 2 {
		utils.RespondError(c, http.StatusBadRequest, "unknown user")
		return
	}

	var existingID string
	err := cc.DB.Raw(`
		SELECT m1.conversation_id
		FROM conversation_members m1
		JOIN conversation_members m2 ON m1.conversation_id = m2.conversation_id
		WHERE m1.user_id = ? AND m2.user_id = ?
		LIMIT 1`, input.UserID1, input.UserID2).Scan(&existingID).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	if existingID != "" {
		c.JSON(http.StatusOK, gin.H{"id": existingID})
		return
	}

	id := uuid.NewString()
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Conversation{ID: id}).Error; err != nil {
			return err
		}
		return tx.Exec(
			"INSERT INTO conversation_members (conversation_id, user_id) VALUES (?, ?), (?, ?)",
			id, input.UserID1, id, input.UserID2,
		).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
