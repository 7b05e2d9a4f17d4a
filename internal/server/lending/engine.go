// Package lending holds the circulation rules of the library: whether a book
// may be borrowed or returned, when it is due and what a late return costs.
//
// The Engine works on entity snapshots passed in by the caller and returns
// the snapshots that should be persisted. It never touches storage and keeps
// no state between calls, so the caller owns loading, saving and
// serialising concurrent requests for the same book.
package lending

import (
	"fmt"

	"github.com/dmitrijs2005/library/internal/server/models"
	"github.com/dmitrijs2005/library/internal/timex"
)

const (
	DefaultBorrowingLimit      = 5
	DefaultBorrowingPeriodDays = 14
	DefaultLateFeePerDay       = 0.5
)

// Policy holds the tunable numbers of the lending rules.
type Policy struct {
	// BorrowingLimit is the number of simultaneous active loans a user may hold.
	BorrowingLimit int
	// BorrowingPeriodDays is added to the borrow date to get the due date.
	BorrowingPeriodDays int
	// LateFeePerDay is charged for every whole day past the due date.
	LateFeePerDay float64
}

func DefaultPolicy() Policy {
	return Policy{
		BorrowingLimit:      DefaultBorrowingLimit,
		BorrowingPeriodDays: DefaultBorrowingPeriodDays,
		LateFeePerDay:       DefaultLateFeePerDay,
	}
}

type Engine struct {
	policy Policy
}

func NewEngine(p Policy) *Engine {
	return &Engine{policy: p}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// DueDate returns the due date of a loan starting on borrowed.
func (e *Engine) DueDate(borrowed timex.Date) timex.Date {
	return borrowed.AddDays(e.policy.BorrowingPeriodDays)
}

// LateFee returns the fee for returning on returned a loan due on due.
func (e *Engine) LateFee(due, returned timex.Date) float64 {
	daysLate := returned.DaysSince(due)
	if daysLate <= 0 {
		return 0
	}
	return float64(daysLate) * e.policy.LateFeePerDay
}

// Borrow decides whether user may borrow book today. activeLoans is the
// number of the user's loans that have not been returned yet. A nil book or
// user means the entity does not exist.
//
// Checks run in order and the first failing one is reported: book exists,
// book is available, user exists, user is under the borrowing limit.
func (e *Engine) Borrow(book *models.Book, user *models.User, activeLoans int, today timex.Date) (models.Book, models.BorrowingRecord, error) {
	if book == nil {
		return models.Book{}, models.BorrowingRecord{}, NotFound("Book not found")
	}

	if !book.Available {
		return models.Book{}, models.BorrowingRecord{}, BookNotAvailable("Book with ID %s is not available for borrowing.", book.ID)
	}

	if user == nil {
		return models.Book{}, models.BorrowingRecord{}, NotFound("User not found for borrowing.")
	}

	if activeLoans >= e.policy.BorrowingLimit {
		return models.Book{}, models.BorrowingRecord{}, BorrowingLimitExceeded(
			"User with ID %s has reached the borrowing limit of %d books.", user.ID, e.policy.BorrowingLimit)
	}

	due := e.DueDate(today)
	lent := book.LentTo(user.ID, due)
	record := models.NewBorrowingRecord(book.ID, user.ID, today, due)

	return lent, record, nil
}

// Return closes the active loan of book. active is the book's unreturned
// borrowing record, or nil if there is none.
func (e *Engine) Return(book *models.Book, active *models.BorrowingRecord, today timex.Date) (models.Book, models.BorrowingRecord, error) {
	if book == nil {
		return models.Book{}, models.BorrowingRecord{}, NotFound("Book not found")
	}

	if active == nil || !active.Active() {
		return models.Book{}, models.BorrowingRecord{}, BookAlreadyReturned(
			"Book with ID %s is already available or no active borrowing record found.", book.ID)
	}

	if active.BookID != book.ID {
		return models.Book{}, models.BorrowingRecord{}, fmt.Errorf("borrowing record %s belongs to book %s, not %s", active.ID, active.BookID, book.ID)
	}

	fee := e.LateFee(active.DueDate, today)
	closed := active.Closed(today, fee)

	return book.Released(), closed, nil
}
