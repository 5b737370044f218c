// Package circulation implements the loan and reservation workflow.
//
// Every state transition runs as one store transaction: the availability check and the
// write that depends on it commit together, and transactions that lose a race against
// a concurrent one are retried from the start. A copy is therefore never on two open loans.
//
// The handlers (LendHandler, ReturnHandler, ReserveHandler) hold the workflow; the managers
// wrap them with observability and add the plain pass-through operations.
package circulation
