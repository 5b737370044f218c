// Package httpapi is the JSON facade over the entity store and the circulation managers.
//
// Errors are answered as {"detail": "..."} with the status code chosen by the sentinel in the
// error chain: not found and no eligible copy are 404, validation and reference problems are
// 400, already returned loans and exhausted conflict retries are 409.
package httpapi
