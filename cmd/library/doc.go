// Command library runs the library circulation service and its maintenance commands.
//
//	library serve                                  HTTP API
//	library init-db                                create the schema
//	library loan create --isbn --member --staff    lend an available copy
//	library loan return --id [--date]              return a loan
//	library reserve --isbn --member                reserve a fully loaned book
//
// Configuration comes from LIBRARY_* environment variables; flags override them.
package main
