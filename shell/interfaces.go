package shell

import (
	"context"
)

// Command is implemented by every circulation command.
type Command interface {
	// CommandType returns the low-cardinality name used in logs, metrics and spans.
	CommandType() string
}

// CommandHandler executes one command type and reports its business outcome next to the result.
type CommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, command C) (R, HandlerResult, error)
}
