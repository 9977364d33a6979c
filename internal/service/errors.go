// Package service holds the operations that touch more than one record.
// Every multi-record mutation runs inside a single transaction.
package service

import (
	"errors"

	"github.com/zeebo/errs"
	"gorm.io/gorm"
)

// Error classes callers map to response codes
var (
	NotFound     = errs.Class("not found")
	Validation   = errs.Class("validation")
	Forbidden    = errs.Class("forbidden")
	Unauthorized = errs.Class("unauthorized")
)

// Message returns the text a classed error was created with, without the
// class prefix
func Message(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// Classified reports whether err belongs to one of the client facing classes
func Classified(err error) bool {
	return NotFound.Has(err) || Validation.Has(err) || Forbidden.Has(err) || Unauthorized.Has(err)
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound.New("%s", msg)
	}

	return err
}
