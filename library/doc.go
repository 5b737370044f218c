// Package library provides the core types and abstractions of the library circulation backend.
//
// It defines the canonical entity records (books, copies, members, staff, loans, reservations,
// fines, authors, publishers and book-author links), the sentinel errors shared by every
// storage and transport implementation, pagination, the re-return policy and the
// dependency-free observability interfaces used by the store and the circulation managers.
//
// Storage engines live in sub-packages (see sqlengine). The circulation workflow, which finds
// an eligible copy and turns it into a loan or a reservation, lives in package circulation.
//
// Common usage pattern:
//
//	store, _ := sqlengine.NewStoreFromPGXPool(pool)
//	loans := circulation.NewLoanManager(store)
//
//	loan, err := loans.CreateLoan(ctx, circulation.BuildLendCommand(isbn, memberID, staffID, time.Now()))
//	if errors.Is(err, library.ErrNoAvailableCopy) {
//		// every copy is out: offer a reservation instead
//	}
package library
