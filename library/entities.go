package library

import (
	"time"
)

// ISBNLength is the fixed length of a book identifier.
const ISBNLength = 13

// Author is a person credited on books, keyed by name.
type Author struct {
	AuthorName  string     `json:"AuthorName"`
	DOB         *time.Time `json:"DOB"`
	Nationality string     `json:"Nationality"`
}

// Publisher is keyed by name.
type Publisher struct {
	PublisherName string `json:"PublisherName"`
	Phone         string `json:"Phone"`
	Address       string `json:"Address"`
	Email         string `json:"Email"`
}

// Book is a title in the catalog. Its identity (ISBN) is immutable, its metadata is not.
type Book struct {
	ISBN        string `json:"ISBN"`
	Title       string `json:"Title"`
	Categories  string `json:"Categories"`
	PublishYear int    `json:"PublishYear"`
	PublishName string `json:"PublishName"`
}

// BookAuthorKey identifies one book-author link.
type BookAuthorKey struct {
	ISBN       string `json:"ISBN"`
	AuthorName string `json:"AuthorName"`
}

// BookAuthor links a Book to an Author. The whole row is its key.
type BookAuthor struct {
	ISBN       string `json:"ISBN"`
	AuthorName string `json:"AuthorName"`
}

// Key returns the composite key of the link.
func (ba BookAuthor) Key() BookAuthorKey {
	return BookAuthorKey{ISBN: ba.ISBN, AuthorName: ba.AuthorName}
}

// Copy is one physical, individually loanable instance of a Book.
// Whether it is on loan is derived from the loans, never stored on the copy.
type Copy struct {
	CopyID        int64  `json:"CopyID"`
	ISBN          string `json:"ISBN"`
	ShelfLocation string `json:"ShelfLocation"`
	ConditionDesc string `json:"ConditionDesc"`
}

// Member borrows and reserves books.
type Member struct {
	MemberID   int64  `json:"MemberID"`
	MemberName string `json:"MemberName"`
	Email      string `json:"Email"`
	Phone      string `json:"Phone"`
	Address    string `json:"Address"`
}

// Staff issues loans.
type Staff struct {
	StaffID   int64   `json:"StaffID"`
	StaffName string  `json:"StaffName"`
	Role      string  `json:"Role"`
	Email     string  `json:"Email"`
	Phone     string  `json:"Phone"`
	Schedule  string  `json:"Schedule"`
	Salary    float64 `json:"Salary"`
}

// Loan ties a Copy of a Book to a Member, issued by Staff.
// A nil ReturnDate means the loan is open and the copy is checked out.
type Loan struct {
	LoanID     int64      `json:"LoanID"`
	ISBN       string     `json:"ISBN"`
	MemberID   int64      `json:"MemberID"`
	StaffID    int64      `json:"StaffID"`
	CopyID     int64      `json:"CopyID"`
	LoanDate   time.Time  `json:"LoanDate"`
	ReturnDate *time.Time `json:"ReturnDate"`
}

// IsOpen reports whether the loan has not been returned yet.
func (l Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

// Reservation is a member's claim on a Book whose copies are all on loan.
// It references the Book and the loaned Copy it was resolved against.
type Reservation struct {
	ReservationID int64     `json:"ReservationID"`
	ISBN          string    `json:"ISBN"`
	MemberID      int64     `json:"MemberID"`
	CopyID        int64     `json:"CopyID"`
	ReserveDate   time.Time `json:"ReserveDate"`
}

// Fine is an overdue charge on a Loan.
type Fine struct {
	FineID      int64   `json:"FineID"`
	LoanID      int64   `json:"LoanID"`
	AmountFined float64 `json:"AmountFined"`
	DaysOverdue int     `json:"DaysOverdue"`
}
