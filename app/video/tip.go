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

type tipBody struct {
	Amount float64 `json:"amount"`
}

// TipView is a tip with both parties' summaries
type TipView struct {
	model.Tip
	Sender   *model.UserSummary `json:"sender"`
	Receiver *model.UserSummary `json:"receiver"`
}

func TipSend(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data tipBody
	if err := c.ShouldBindJSON(&data); err != nil {
		reply.Error(c, http.StatusBadRequest, validators.ErrTipAmount.Error())
		return
	}

	amount, err := validators.TipAmountValidator(data.Amount)
	if err != nil {
		reply.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := service.SendTip(c.Request.Context(), d.DB, userID, c.Param("id"), amount)
	if err != nil {
		reply.Fail(c, err, "Failed to send tip")
		return
	}

	c.JSON(http.StatusCreated, res)
}

func TipSummary(c *gin.Context, d *internal.Deps) {
	s, err := service.SummarizeTips(c.Request.Context(), d.DB, c.Param("id"), c.GetString("userID"))
	if err != nil {
		reply.Fail(c, err, "Failed to summarize tips")
		return
	}

	c.JSON(http.StatusOK, s)
}

func TipList(c *gin.Context, d *internal.Deps) {
	tips, err := service.ListTips(c.Request.Context(), d.DB, c.Param("id"), c.GetString("userID"))
	if err != nil {
		reply.Fail(c, err, "Failed to fetch tips")
		return
	}

	views := make([]TipView, len(tips))
	for i, t := range tips {
		views[i] = TipView{
			Tip:      t,
			Sender:   t.Sender.Summary(),
			Receiver: t.Receiver.Summary(),
		}
	}

	c.JSON(http.StatusOK, views)
}
