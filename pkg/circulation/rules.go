package circulation

import (
	"github.com/libraryhub/libraryhub/pkg/errcodes"
	"github.com/libraryhub/libraryhub/pkg/models"
)

const (
	MessageExpectedReturnDate = "Expected return date must be at least a day after the borrow date"
	MessageActualReturnDate   = "Actual return date cannot be earlier than borrow date"
	MessageOutOfStock         = "Book is out of stock"
	MessageAlreadyReturned    = "Borrowing has already been returned"
)

// ValidateExpectedReturnDate requires the expected return date to be strictly
// after the borrow date.
func ValidateExpectedReturnDate(borrowDate, expected models.Date) error {
	if !expected.After(borrowDate) {
		return errcodes.ValidationError(MessageExpectedReturnDate)
	}
	return nil
}

// ValidateActualReturnDate requires the actual return date to be on or after
// the borrow date. Returning on the day of borrowing is allowed.
func ValidateActualReturnDate(borrowDate, actual models.Date) error {
	if actual.Before(borrowDate) {
		return errcodes.ValidationError(MessageActualReturnDate)
	}
	return nil
}
