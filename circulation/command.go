package circulation

import (
	"time"

	"github.com/DevinCastillo5/Library-App/library"
)

const (
	commandTypeLend    = "LendBookCopy"
	commandTypeReturn  = "ReturnBookCopy"
	commandTypeReserve = "ReserveBookCopy"
)

// LendCommand asks for a loan of any available copy of a book.
type LendCommand struct {
	ISBN     string
	MemberID int64
	StaffID  int64
	LoanDate time.Time
}

// BuildLendCommand creates a LendCommand.
func BuildLendCommand(isbn string, memberID int64, staffID int64, loanDate time.Time) LendCommand {
	return LendCommand{ISBN: isbn, MemberID: memberID, StaffID: staffID, LoanDate: loanDate.UTC()}
}

// CommandType implements shell.Command.
func (LendCommand) CommandType() string { return commandTypeLend }

// Validate checks the command before any transaction is opened.
func (c LendCommand) Validate() error {
	if err := library.ValidateISBN(c.ISBN); err != nil {
		return err
	}

	if c.MemberID <= 0 {
		return library.ValidationError("MemberID", "must be positive")
	}

	if c.StaffID <= 0 {
		return library.ValidationError("StaffID", "must be positive")
	}

	if c.LoanDate.IsZero() {
		return library.ValidationError("LoanDate", "is required")
	}

	return nil
}

// ReturnCommand closes a loan.
type ReturnCommand struct {
	LoanID     int64
	ReturnDate time.Time
}

// BuildReturnCommand creates a ReturnCommand.
func BuildReturnCommand(loanID int64, returnDate time.Time) ReturnCommand {
	return ReturnCommand{LoanID: loanID, ReturnDate: returnDate.UTC()}
}

// CommandType implements shell.Command.
func (ReturnCommand) CommandType() string { return commandTypeReturn }

// Validate checks the command before any transaction is opened.
func (c ReturnCommand) Validate() error {
	if c.LoanID <= 0 {
		return library.ValidationError("LoanID", "must be positive")
	}

	if c.ReturnDate.IsZero() {
		return library.ValidationError("ReturnDate", "is required")
	}

	return nil
}

// ReserveCommand asks for a reservation on a book whose copies are all on loan.
type ReserveCommand struct {
	ISBN        string
	MemberID    int64
	ReserveDate time.Time
}

// BuildReserveCommand creates a ReserveCommand.
func BuildReserveCommand(isbn string, memberID int64, reserveDate time.Time) ReserveCommand {
	return ReserveCommand{ISBN: isbn, MemberID: memberID, ReserveDate: reserveDate.UTC()}
}

// CommandType implements shell.Command.
func (ReserveCommand) CommandType() string { return commandTypeReserve }

// Validate checks the command before any transaction is opened.
func (c ReserveCommand) Validate() error {
	if err := library.ValidateISBN(c.ISBN); err != nil {
		return err
	}

	if c.MemberID <= 0 {
		return library.ValidationError("MemberID", "must be positive")
	}

	if c.ReserveDate.IsZero() {
		return library.ValidationError("ReserveDate", "is required")
	}

	return nil
}
