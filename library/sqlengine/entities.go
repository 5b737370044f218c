package sqlengine

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine/internal/adapters"
)

const (
	tableAuthors      = "authors"
	tableBookAuthors  = "book_authors"
	tableBooks        = "books"
	tableCopies       = "copies"
	tableFines        = "fines"
	tableLoans        = "loans"
	tableMembers      = "members"
	tablePublishers   = "publishers"
	tableReservations = "reservations"
	tableStaff        = "staff"

	colAddress       = "address"
	colAmountFined   = "amount_fined"
	colAuthorName    = "author_name"
	colCategories    = "categories"
	colConditionDesc = "condition_desc"
	colCopyID        = "copy_id"
	colDaysOverdue   = "days_overdue"
	colDOB           = "dob"
	colEmail         = "email"
	colFineID        = "fine_id"
	colISBN          = "isbn"
	colLoanDate      = "loan_date"
	colLoanID        = "loan_id"
	colMemberID      = "member_id"
	colMemberName    = "member_name"
	colNationality   = "nationality"
	colPhone         = "phone"
	colPublishName   = "publish_name"
	colPublishYear   = "publish_year"
	colPublisherName = "publisher_name"
	colReservationID = "reservation_id"
	colReserveDate   = "reserve_date"
	colReturnDate    = "return_date"
	colRole          = "role"
	colSalary        = "salary"
	colSchedule      = "schedule"
	colShelfLocation = "shelf_location"
	colStaffID       = "staff_id"
	colStaffName     = "staff_name"
	colTitle         = "title"
)

// BookAuthorTable is the book-author link table with its lookups by either side.
type BookAuthorTable struct {
	*Table[library.BookAuthor, library.BookAuthorKey]
}

// ListByBook returns the author links of one book.
func (t *BookAuthorTable) ListByBook(ctx context.Context, isbn string) ([]library.BookAuthor, error) {
	return t.ListWhere(ctx, goqu.C(colISBN).Eq(isbn))
}

// ListByAuthor returns the book links of one author.
func (t *BookAuthorTable) ListByAuthor(ctx context.Context, authorName string) ([]library.BookAuthor, error) {
	return t.ListWhere(ctx, goqu.C(colAuthorName).Eq(authorName))
}

// DeleteAllForBook removes every author link of one book.
func (t *BookAuthorTable) DeleteAllForBook(ctx context.Context, isbn string) (int64, error) {
	return t.DeleteWhere(ctx, goqu.C(colISBN).Eq(isbn))
}

// DeleteAllForAuthor removes every book link of one author.
func (t *BookAuthorTable) DeleteAllForAuthor(ctx context.Context, authorName string) (int64, error) {
	return t.DeleteWhere(ctx, goqu.C(colAuthorName).Eq(authorName))
}

// LoanTable is the loan table. Creating and returning loans belongs to the circulation
// workflow, which goes through Store.InTx; this table serves the plain pass-throughs.
type LoanTable struct {
	*Table[library.Loan, int64]
}

// ListOpenByMember returns the loans a member has not returned yet.
func (t *LoanTable) ListOpenByMember(ctx context.Context, memberID int64) ([]library.Loan, error) {
	return t.ListWhere(ctx, goqu.And(goqu.C(colMemberID).Eq(memberID), goqu.C(colReturnDate).IsNull()))
}

// ReservationTable is the reservation table.
type ReservationTable struct {
	*Table[library.Reservation, int64]
}

// DeleteAllForMember cancels every reservation of one member.
func (t *ReservationTable) DeleteAllForMember(ctx context.Context, memberID int64) (int64, error) {
	return t.DeleteWhere(ctx, goqu.C(colMemberID).Eq(memberID))
}

// FineTable is the fine table.
type FineTable struct {
	*Table[library.Fine, int64]
}

// ListByLoan returns the fines charged on one loan.
func (t *FineTable) ListByLoan(ctx context.Context, loanID int64) ([]library.Fine, error) {
	return t.ListWhere(ctx, goqu.C(colLoanID).Eq(loanID))
}

func stringKey(column string) (func(string) exp.Expression, func([]string) exp.Expression) {
	return func(key string) exp.Expression { return goqu.C(column).Eq(key) },
		func(keys []string) exp.Expression { return goqu.C(column).In(keys) }
}

func int64Key(column string) (func(int64) exp.Expression, func([]int64) exp.Expression) {
	return func(key int64) exp.Expression { return goqu.C(column).Eq(key) },
		func(keys []int64) exp.Expression { return goqu.C(column).In(keys) }
}

func isZeroID(id int64) bool { return id == 0 }

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}

	return t.UTC()
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}

	v := t.Time
	return &v
}

func authorsDef() tableDef[library.Author, string] {
	whereKey, whereKeys := stringKey(colAuthorName)

	return tableDef[library.Author, string]{
		name:       tableAuthors,
		columns:    []string{colAuthorName, colDOB, colNationality},
		keyColumns: []string{colAuthorName},
		keyOf:      func(a library.Author) string { return a.AuthorName },
		whereKey:   whereKey,
		whereKeys:  whereKeys,
		record: func(a library.Author) goqu.Record {
			return goqu.Record{colAuthorName: a.AuthorName, colDOB: nullableTime(a.DOB), colNationality: a.Nationality}
		},
		scan: func(rows adapters.DBRows) (library.Author, error) {
			var a library.Author
			var dob sql.NullTime
			if err := rows.Scan(&a.AuthorName, &dob, &a.Nationality); err != nil {
				return a, err
			}

			a.DOB = fromNullTime(dob)

			return a, nil
		},
		validate: library.Author.Validate,
	}
}

func publishersDef() tableDef[library.Publisher, string] {
	whereKey, whereKeys := stringKey(colPublisherName)

	return tableDef[library.Publisher, string]{
		name:       tablePublishers,
		columns:    []string{colPublisherName, colPhone, colAddress, colEmail},
		keyColumns: []string{colPublisherName},
		keyOf:      func(p library.Publisher) string { return p.PublisherName },
		whereKey:   whereKey,
		whereKeys:  whereKeys,
		record: func(p library.Publisher) goqu.Record {
			return goqu.Record{colPublisherName: p.PublisherName, colPhone: p.Phone, colAddress: p.Address, colEmail: p.Email}
		},
		scan: func(rows adapters.DBRows) (library.Publisher, error) {
			var p library.Publisher
			err := rows.Scan(&p.PublisherName, &p.Phone, &p.Address, &p.Email)

			return p, err
		},
		validate: library.Publisher.Validate,
	}
}

func booksDef() tableDef[library.Book, string] {
	whereKey, whereKeys := stringKey(colISBN)

	return tableDef[library.Book, string]{
		name:       tableBooks,
		columns:    []string{colISBN, colTitle, colCategories, colPublishYear, colPublishName},
		keyColumns: []string{colISBN},
		keyOf:      func(b library.Book) string { return b.ISBN },
		whereKey:   whereKey,
		whereKeys:  whereKeys,
		record: func(b library.Book) goqu.Record {
			return goqu.Record{
				colISBN:        b.ISBN,
				colTitle:       b.Title,
				colCategories:  b.Categories,
				colPublishYear: b.PublishYear,
				colPublishName: b.PublishName,
			}
		},
		scan: func(rows adapters.DBRows) (library.Book, error) {
			var b library.Book
			err := rows.Scan(&b.ISBN, &b.Title, &b.Categories, &b.PublishYear, &b.PublishName)

			return b, err
		},
		validate: library.Book.Validate,
	}
}

func bookAuthorsDef() tableDef[library.BookAuthor, library.BookAuthorKey] {
	whereKey := func(key library.BookAuthorKey) exp.Expression {
		return goqu.Ex{colISBN: key.ISBN, colAuthorName: key.AuthorName}
	}

	return tableDef[library.BookAuthor, library.BookAuthorKey]{
		name:       tableBookAuthors,
		columns:    []string{colISBN, colAuthorName},
		keyColumns: []string{colISBN, colAuthorName},
		keyOf:      library.BookAuthor.Key,
		whereKey:   whereKey,
		whereKeys: func(keys []library.BookAuthorKey) exp.Expression {
			conditions := make([]exp.Expression, 0, len(keys))
			for _, key := range keys {
				conditions = append(conditions, whereKey(key))
			}

			return goqu.Or(conditions...)
		},
		record: func(ba library.BookAuthor) goqu.Record {
			return goqu.Record{colISBN: ba.ISBN, colAuthorName: ba.AuthorName}
		},
		scan: func(rows adapters.DBRows) (library.BookAuthor, error) {
			var ba library.BookAuthor
			err := rows.Scan(&ba.ISBN, &ba.AuthorName)

			return ba, err
		},
		validate: library.BookAuthor.Validate,
	}
}

func copiesDef() tableDef[library.Copy, int64] {
	whereKey, whereKeys := int64Key(colCopyID)

	return tableDef[library.Copy, int64]{
		name:       tableCopies,
		columns:    []string{colCopyID, colISBN, colShelfLocation, colConditionDesc},
		keyColumns: []string{colCopyID},
		autoKey:    colCopyID,
		keyOf:      func(c library.Copy) int64 { return c.CopyID },
		zeroKey:    isZeroID,
		withKey:    func(c library.Copy, id int64) library.Copy { c.CopyID = id; return c },
		whereKey:   whereKey,
		whereKeys:  whereKeys,
		record: func(c library.Copy) goqu.Record {
			return goqu.Record{
				colCopyID:        c.CopyID,
				colISBN:          c.ISBN,
				colShelfLocation: c.ShelfLocation,
				colConditionDesc: c.ConditionDesc,
			}
		},
		scan:     scanCopy,
		validate: library.Copy.Validate,
	}
}

func scanCopy(rows adapters.DBRows) (library.Copy, error) {
	var c library.Copy
	err := rows.Scan(&c.CopyID, &c.ISBN, &c.ShelfLocation, &c.ConditionDesc)

	return c, err
}

func membersDef() tableDef[library.Member, int64] {
	whereKey, whereKeys := int64Key(colMemberID)

	return tableDef[library.Member, int64]{
		name:       tableMembers,
		columns:    []string{colMemberID, colMemberName, colEmail, colPhone, colAddress},
		keyColumns: []string{colMemberID},
		autoKey:    colMemberID,
		keyOf:      func(m library.Member) int64 { return m.MemberID },
		zeroKey:    isZeroID,
		withKey:    func(m library.Member, id int64) library.Member { m.MemberID = id; return m },
		whereKey:   whereKey,
		whereKeys:  whereKeys,
		record: func(m library.Member) goqu.Record {
			return goqu.Record{
				colMemberID:   m.MemberID,
				colMemberName: m.MemberName,
				colEmail:      m.Email,
				colPhone:      m.Phone,
				colAddress:    m.Address,
			}
		},
		scan: func(rows adapters.DBRows) (library.Member, error) {
			var m library.Member
			err := rows.Scan(&m.MemberID, &m.MemberName, &m.Email, &m.Phone, &m.Address)

			return m, err
		},
		validate: library.Member.Validate,
	}
}

func staffDef() tableDef[library.Staff, int64] {
	whereKey, whereKeys := int64Key(colStaffID)

	return tableDef[library.Staff, int64]{
		name:       tableStaff,
		columns:    []string{colStaffID, colStaffName, colRole, colEmail, colPhone, colSchedule, colSalary},
		keyColumns: []string{colStaffID},
		autoKey:    colStaffID,
		keyOf:      func(s library.Staff) int64 { return s.StaffID },
		zeroKey:    isZeroID,
		withKey:    func(s library.Staff, id int64) library.Staff { s.StaffID = id; return s },
		whereKey:   whereKey,
		whereKeys:  whereKeys,
		record: func(s library.Staff) goqu.Record {
			return goqu.Record{
				colStaffID:   s.StaffID,
				colStaffName: s.StaffName,
				colRole:      s.Role,
				colEmail:     s.Email,
				colPhone:     s.Phone,
				colSchedule:  s.Schedule,
				colSalary:    s.Salary,
			}
		},
		scan: func(rows adapters.DBRows) (library.Staff, error) {
			var s library.Staff
			err := rows.Scan(&s.StaffID, &s.StaffName, &s.Role, &s.Email, &s.Phone, &s.Schedule, &s.Salary)

			return s, err
		},
		validate: library.Staff.Validate,
	}
}

func loansDef() tableDef[library.Loan, int64] {
	whereKey, whereKeys := int64Key(colLoanID)

	return tableDef[library.Loan, int64]{
		name:       tableLoans,
		columns:    []string{colLoanID, colISBN, colMemberID, colStaffID, colCopyID, colLoanDate, colReturnDate},
		keyColumns: []string{colLoanID},
		autoKey:    colLoanID,
		keyOf:      func(l library.Loan) int64 { return l.LoanID },
		zeroKey:    isZeroID,
		withKey:    func(l library.Loan, id int64) library.Loan { l.LoanID = id; return l },
		whereKey:   whereKey,
		whereKeys:  whereKeys,
		record: func(l library.Loan) goqu.Record {
			return goqu.Record{
				colLoanID:     l.LoanID,
				colISBN:       l.ISBN,
				colMemberID:   l.MemberID,
				colStaffID:    l.StaffID,
				colCopyID:     l.CopyID,
				colLoanDate:   l.LoanDate.UTC(),
				colReturnDate: nullableTime(l.ReturnDate),
			}
		},
		scan: func(rows adapters.DBRows) (library.Loan, error) {
			var l library.Loan
			var returnDate sql.NullTime
			if err := rows.Scan(&l.LoanID, &l.ISBN, &l.MemberID, &l.StaffID, &l.CopyID, &l.LoanDate, &returnDate); err != nil {
				return l, err
			}

			l.ReturnDate = fromNullTime(returnDate)

			return l, nil
		},
		validate: library.Loan.Validate,
	}
}

func reservationsDef() tableDef[library.Reservation, int64] {
	whereKey, whereKeys := int64Key(colReservationID)

	return tableDef[library.Reservation, int64]{
		name:       tableReservations,
		columns:    []string{colReservationID, colISBN, colMemberID, colCopyID, colReserveDate},
		keyColumns: []string{colReservationID},
		autoKey:    colReservationID,
		keyOf:      func(r library.Reservation) int64 { return r.ReservationID },
		zeroKey:    isZeroID,
		withKey:    func(r library.Reservation, id int64) library.Reservation { r.ReservationID = id; return r },
		whereKey:   whereKey,
		whereKeys:  whereKeys,
		record: func(r library.Reservation) goqu.Record {
			return goqu.Record{
				colReservationID: r.ReservationID,
				colISBN:          r.ISBN,
				colMemberID:      r.MemberID,
				colCopyID:        r.CopyID,
				colReserveDate:   r.ReserveDate.UTC(),
			}
		},
		scan: func(rows adapters.DBRows) (library.Reservation, error) {
			var r library.Reservation
			err := rows.Scan(&r.ReservationID, &r.ISBN, &r.MemberID, &r.CopyID, &r.ReserveDate)

			return r, err
		},
		validate: library.Reservation.Validate,
	}
}

func finesDef() tableDef[library.Fine, int64] {
	whereKey, whereKeys := int64Key(colFineID)

	return tableDef[library.Fine, int64]{
		name:       tableFines,
		columns:    []string{colFineID, colLoanID, colAmountFined, colDaysOverdue},
		keyColumns: []string{colFineID},
		autoKey:    colFineID,
		keyOf:      func(f library.Fine) int64 { return f.FineID },
		zeroKey:    isZeroID,
		withKey:    func(f library.Fine, id int64) library.Fine { f.FineID = id; return f },
		whereKey:   whereKey,
		whereKeys:  whereKeys,
		record: func(f library.Fine) goqu.Record {
			return goqu.Record{
				colFineID:      f.FineID,
				colLoanID:      f.LoanID,
				colAmountFined: f.AmountFined,
				colDaysOverdue: f.DaysOverdue,
			}
		},
		scan: func(rows adapters.DBRows) (library.Fine, error) {
			var f library.Fine
			err := rows.Scan(&f.FineID, &f.LoanID, &f.AmountFined, &f.DaysOverdue)

			return f, err
		},
		validate: library.Fine.Validate,
	}
}
