// Package models defines the library entities persisted in the database.
//
// Entities are treated as values: operations that change a book, user or
// borrowing record return a modified copy and leave the receiver untouched.
package models

import (
	"github.com/google/uuid"

	"github.com/dmitrijs2005/library/internal/timex"
)

// Book is a single lendable copy in the catalogue.
//
// Available books have neither BorrowedByUserID nor DueDate; borrowed books
// have both.
type Book struct {
	ID               uuid.UUID   `db:"id" json:"id"`
	Title            string      `db:"title" json:"title"`
	Author           string      `db:"author" json:"author"`
	Available        bool        `db:"available" json:"available"`
	BorrowedByUserID *uuid.UUID  `db:"borrowed_by_user_id" json:"borrowedByUserId"`
	DueDate          *timex.Date `db:"due_date" json:"dueDate"`
}

// NewBook returns an available book with a fresh identifier.
func NewBook(title, author string) Book {
	return Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    author,
		Available: true,
	}
}

// WithDetails returns a copy with title and author replaced. Identity and
// lending state are kept.
func (b Book) WithDetails(title, author string) Book {
	b.Title = title
	b.Author = author
	return b
}

// LentTo returns a copy marked as borrowed by userID until due.
func (b Book) LentTo(userID uuid.UUID, due timex.Date) Book {
	b.Available = false
	b.BorrowedByUserID = &userID
	b.DueDate = &due
	return b
}

// Released returns a copy marked as available again.
func (b Book) Released() Book {
	b.Available = true
	b.BorrowedByUserID = nil
	b.DueDate = nil
	return b
}

// Consistent reports whether the availability flag agrees with the borrower
// and due date fields.
func (b Book) Consistent() bool {
	if b.Available {
		return b.BorrowedByUserID == nil && b.DueDate == nil
	}
	return b.BorrowedByUserID != nil && b.DueDate != nil
}
