package service

import (
	"context"

	"piclips/video-api/internal/model"
	"piclips/video-api/pkg/util"

	"gorm.io/gorm"
)

type TipResult struct {
	Tip             *model.Tip `json:"tip"`
	SenderBalance   int64      `json:"senderBalance"`
	ReceiverBalance int64      `json:"receiverBalance"`
}

type TipSummary struct {
	TotalAmount   int64 `json:"totalAmount"`
	TipCount      int64 `json:"tipCount"`
	UniqueSenders int64 `json:"uniqueSenders"`
}

// SendTip moves amount tokens from senderID to the owner of videoID. The
// debit only happens if the sender can cover it, otherwise nothing changes.
func SendTip(ctx context.Context, db *gorm.DB, senderID, videoID string, amount int64) (*TipResult, error) {
	if amount < 1 {
		return nil, Validation.New("Invalid tip amount")
	}

	id, err := util.NewID()
	if err != nil {
		return nil, err
	}

	result := &TipResult{}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := findVisible(forUpdate(tx), videoID, senderID)
		if err != nil {
			return err
		}

		var sender model.User
		if err := tx.Select("id").Where("id = ?", senderID).First(&sender).Error; err != nil {
			return notFound(err, "Sender not found")
		}

		if v.UserID == senderID {
			return Validation.New("Cannot tip your own video")
		}

		res := tx.Model(&model.User{}).
			Where("id = ? AND token_balance >= ?", senderID, amount).
			Update("token_balance", gorm.Expr("token_balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return Validation.New("Insufficient tokens")
		}

		res = tx.Model(&model.User{}).
			Where("id = ?", v.UserID).
			Update("token_balance", gorm.Expr("token_balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return NotFound.New("Video owner not found")
		}

		result.Tip = &model.Tip{
			ID:         id,
			SenderID:   senderID,
			ReceiverID: v.UserID,
			VideoID:    videoID,
			Amount:     amount,
		}

		if err := tx.Create(result.Tip).Error; err != nil {
			return err
		}

		if err := balance(tx, senderID, &result.SenderBalance); err != nil {
			return err
		}

		return balance(tx, v.UserID, &result.ReceiverBalance)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func balance(tx *gorm.DB, userID string, out *int64) error {
	return tx.Model(&model.User{}).
		Where("id = ?", userID).
		Select("token_balance").
		Scan(out).
		Error
}

// SummarizeTips aggregates every tip a video received
func SummarizeTips(ctx context.Context, db *gorm.DB, videoID, viewerID string) (*TipSummary, error) {
	if _, err := findVisible(db.WithContext(ctx), videoID, viewerID); err != nil {
		return nil, err
	}

	var s TipSummary

	err := db.WithContext(ctx).
		Model(&model.Tip{}).
		Select("COALESCE(SUM(amount), 0) AS total_amount, COUNT(*) AS tip_count, COUNT(DISTINCT sender_id) AS unique_senders").
		Where("video_id = ?", videoID).
		Scan(&s).
		Error
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// ListTips returns the tips a video received, newest first
func ListTips(ctx context.Context, db *gorm.DB, videoID, viewerID string) ([]model.Tip, error) {
	if _, err := findVisible(db.WithContext(ctx), videoID, viewerID); err != nil {
		return nil, err
	}

	tips := []model.Tip{}

	err := db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		Find(&tips).
		Error

	return tips, err
}
