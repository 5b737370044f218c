package library

// ValidateISBN checks that isbn is present and has ISBNLength characters.
func ValidateISBN(isbn string) error {
	if isbn == "" {
		return ValidationError("ISBN", "is required")
	}

	if len(isbn) != ISBNLength {
		return ValidationError("ISBN", "must have 13 characters")
	}

	return nil
}

func validateRequired(field string, value string) error {
	if value == "" {
		return ValidationError(field, "is required")
	}

	return nil
}

func validatePositiveID(field string, id int64) error {
	if id <= 0 {
		return ValidationError(field, "must be positive")
	}

	return nil
}

func validateNonNegativeID(field string, id int64) error {
	if id < 0 {
		return ValidationError(field, "must not be negative")
	}

	return nil
}

// Validate checks the required fields of an Author.
func (a Author) Validate() error {
	return validateRequired("AuthorName", a.AuthorName)
}

// Validate checks the required fields of a Publisher.
func (p Publisher) Validate() error {
	return validateRequired("PublisherName", p.PublisherName)
}

// Validate checks the required fields of a Book.
func (b Book) Validate() error {
	if err := ValidateISBN(b.ISBN); err != nil {
		return err
	}

	if err := validateRequired("Title", b.Title); err != nil {
		return err
	}

	if b.PublishYear < 0 {
		return ValidationError("PublishYear", "must not be negative")
	}

	return nil
}

// Validate checks both halves of the link.
func (ba BookAuthor) Validate() error {
	if err := ValidateISBN(ba.ISBN); err != nil {
		return err
	}

	return validateRequired("AuthorName", ba.AuthorName)
}

// Validate checks the required fields of a Copy. A zero CopyID lets the store assign one.
func (c Copy) Validate() error {
	if err := validateNonNegativeID("CopyID", c.CopyID); err != nil {
		return err
	}

	return ValidateISBN(c.ISBN)
}

// Validate checks the required fields of a Member. A zero MemberID lets the store assign one.
func (m Member) Validate() error {
	if err := validateNonNegativeID("MemberID", m.MemberID); err != nil {
		return err
	}

	return validateRequired("MemberName", m.MemberName)
}

// Validate checks the required fields of a Staff record. A zero StaffID lets the store assign one.
func (s Staff) Validate() error {
	if err := validateNonNegativeID("StaffID", s.StaffID); err != nil {
		return err
	}

	if s.Salary < 0 {
		return ValidationError("Salary", "must not be negative")
	}

	return validateRequired("StaffName", s.StaffName)
}

// Validate checks the references of a Loan and that it is not returned before it was issued.
func (l Loan) Validate() error {
	if err := validateNonNegativeID("LoanID", l.LoanID); err != nil {
		return err
	}

	if err := ValidateISBN(l.ISBN); err != nil {
		return err
	}

	if err := validatePositiveID("MemberID", l.MemberID); err != nil {
		return err
	}

	if err := validatePositiveID("StaffID", l.StaffID); err != nil {
		return err
	}

	if err := validatePositiveID("CopyID", l.CopyID); err != nil {
		return err
	}

	if l.LoanDate.IsZero() {
		return ValidationError("LoanDate", "is required")
	}

	if l.ReturnDate != nil && l.ReturnDate.Before(l.LoanDate) {
		return ValidationError("ReturnDate", "must not be before LoanDate")
	}

	return nil
}

// Validate checks the references of a Reservation.
func (r Reservation) Validate() error {
	if err := validateNonNegativeID("ReservationID", r.ReservationID); err != nil {
		return err
	}

	if err := ValidateISBN(r.ISBN); err != nil {
		return err
	}

	if err := validatePositiveID("MemberID", r.MemberID); err != nil {
		return err
	}

	if err := validatePositiveID("CopyID", r.CopyID); err != nil {
		return err
	}

	if r.ReserveDate.IsZero() {
		return ValidationError("ReserveDate", "is required")
	}

	return nil
}

// Validate checks the loan reference and the amounts of a Fine.
func (f Fine) Validate() error {
	if err := validateNonNegativeID("FineID", f.FineID); err != nil {
		return err
	}

	if err := validatePositiveID("LoanID", f.LoanID); err != nil {
		return err
	}

	if f.AmountFined < 0 {
		return ValidationError("AmountFined", "must not be negative")
	}

	if f.DaysOverdue < 0 {
		return ValidationError("DaysOverdue", "must not be negative")
	}

	return nil
}
