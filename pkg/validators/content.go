package validators

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxCommentLength     = 500
	MaxTitleLength       = 150
	MaxDescriptionLength = 2000
)

var (
	ErrCommentEmpty    = errors.New("Comment text is required")
	ErrCommentTooLong  = fmt.Errorf("Comment can't be longer than %d characters", MaxCommentLength)
	ErrTitleEmpty      = errors.New("Title is required")
	ErrTitleTooLong    = fmt.Errorf("Title can't be longer than %d characters", MaxTitleLength)
	ErrDescTooLong     = fmt.Errorf("Description can't be longer than %d characters", MaxDescriptionLength)
	ErrPrivacyInvalid  = errors.New("Privacy must be one of public, private or unlisted")
	ErrTipAmount       = errors.New("Invalid tip amount")
	ErrSearchTermEmpty = errors.New("Search term is required")
	ErrSearchType      = errors.New("Search type must be name or hashtag")
)

// CommentValidator trims c and checks its length
func CommentValidator(c string) (string, error) {
	c = strings.TrimSpace(c)
	if c == "" {
		return "", ErrCommentEmpty
	}

	if utf8.RuneCountInString(c) > MaxCommentLength {
		return "", ErrCommentTooLong
	}

	return c, nil
}

// VideoMetaValidator trims and checks a video's title and description
func VideoMetaValidator(title, desc string) (string, string, error) {
	title = strings.TrimSpace(title)
	desc = strings.TrimSpace(desc)

	if title == "" {
		return "", "", ErrTitleEmpty
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", "", ErrTitleTooLong
	}

	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return "", "", ErrDescTooLong
	}

	return title, desc, nil
}

// TipAmountValidator only lets whole, positive amounts through
func TipAmountValidator(a float64) (int64, error) {
	if a < 1 || a != float64(int64(a)) {
		return 0, ErrTipAmount
	}

	return int64(a), nil
}
