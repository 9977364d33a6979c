package validators

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxBioLength         = 300
	MaxDisplayNameLength = 50
	MaxHashtags          = 20
	MaxHashtagLength     = 30
	MaxLinkLength        = 200
)

var (
	ErrUsernameInvalid = errors.New("Username must be 3-30 characters of letters, numbers, '_' or '.'")
	ErrBioTooLong      = fmt.Errorf("Bio can't be longer than %d characters", MaxBioLength)
	ErrDisplayName     = fmt.Errorf("Display name must be 1-%d characters", MaxDisplayNameLength)
	ErrTooManyHashtags = fmt.Errorf("A profile can have at most %d hashtags", MaxHashtags)
	ErrHashtagInvalid  = fmt.Errorf("Hashtags must be 1-%d characters without commas or spaces", MaxHashtagLength)
	ErrLinkTooLong     = fmt.Errorf("Links can't be longer than %d characters", MaxLinkLength)
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.]{3,30}$`)

func UsernameValidator(u string) error {
	if !usernameRe.MatchString(u) {
		return ErrUsernameInvalid
	}

	return nil
}

func DisplayNameValidator(n string) error {
	if l := utf8.RuneCountInString(n); l == 0 || l > MaxDisplayNameLength {
		return ErrDisplayName
	}

	return nil
}

func BioValidator(b string) error {
	if utf8.RuneCountInString(b) > MaxBioLength {
		return ErrBioTooLong
	}

	return nil
}

func LinkValidator(l string) error {
	if len(l) > MaxLinkLength {
		return ErrLinkTooLong
	}

	return nil
}

// NormalizeHashtags trims each tag and its leading '#', drops empty and
// duplicate tags and validates the rest
func NormalizeHashtags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t == "" {
			continue
		}

		if utf8.RuneCountInString(t) > MaxHashtagLength || strings.ContainsAny(t, ", \t\n") {
			return nil, ErrHashtagInvalid
		}

		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, t)
	}

	if len(out) > MaxHashtags {
		return nil, ErrTooManyHashtags
	}

	return out, nil
}
