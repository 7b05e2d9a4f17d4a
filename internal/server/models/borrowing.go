package models

import (
	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/timex"
)

// BorrowingRecord is one loan of a book to a user. A nil ReturnDate means
// the loan is still active.
type BorrowingRecord struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	BookID     uuid.UUID   `db:"book_id" json:"bookId"`
	UserID     uuid.UUID   `db:"user_id" json:"userId"`
	BorrowDate timex.Date  `db:"borrow_date" json:"borrowDate"`
	DueDate    timex.Date  `db:"due_date" json:"dueDate"`
	ReturnDate *timex.Date `db:"return_date" json:"returnDate"`
	LateFee    float64     `db:"late_fee" json:"lateFee"`
}

// NewBorrowingRecord opens an active loan with no late fee.
func NewBorrowingRecord(bookID, userID uuid.UUID, borrowed, due timex.Date) BorrowingRecord {
	return BorrowingRecord{
		ID:         uuid.New(),
		BookID:     bookID,
		UserID:     userID,
		BorrowDate: borrowed,
		DueDate:    due,
	}
}

func (r BorrowingRecord) Active() bool {
	return r.ReturnDate == nil
}

// Closed returns a copy marked as returned on the given date with fee.
func (r BorrowingRecord) Closed(returned timex.Date, fee float64) BorrowingRecord {
	r.ReturnDate = &returned
	r.LateFee = fee
	return r
}
