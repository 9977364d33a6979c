package video

import (
	"net/http"

	"piclips/video-api/app/reply"
	"piclips/video-api/internal"
	"piclips/video-api/internal/model"
	"piclips/video-api/internal/service"
	"piclips/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
)

type commentBody struct {
	Content string `json:"content"`
}

// CommentView is a comment with its author summary
type CommentView struct {
	model.Comment
	User *model.UserSummary `json:"user"`
}

func commentView(c *model.Comment) CommentView {
	return CommentView{Comment: *c, User: c.User.Summary()}
}

func CommentCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data commentBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	content, err := validators.CommentValidator(data.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	comment, count, err := service.AddComment(c.Request.Context(), d.DB, c.Param("id"), userID, content)
	if err != nil {
		reply.Fail(c, err, "Failed to add comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment":      commentView(comment),
		"commentCount": count,
	})
}

func CommentDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	err := service.DeleteComment(c.Request.Context(), d.DB, c.Param("id"), c.Param("commentId"), userID)
	if err != nil {
		reply.Fail(c, err, "Failed to delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
	})
}

func CommentList(c *gin.Context, d *internal.Deps) {
	comments, err := service.ListComments(c.Request.Context(), d.DB, c.Param("id"), c.GetString("userID"))
	if err != nil {
		reply.Fail(c, err, "Failed to fetch comments")
		return
	}

	views := make([]CommentView, len(comments))
	for i := range comments {
		views[i] = commentView(&comments[i])
	}

	c.JSON(http.StatusOK, views)
}
