package library

const (
	// DefaultPageLimit is used when a list request does not specify a limit.
	DefaultPageLimit = 100

	// MaxPageLimit caps the number of rows a single list request returns.
	MaxPageLimit = 1000
)

// Page is an offset/limit window over a primary-key ordered listing.
type Page struct {
	Skip  uint
	Limit uint
}

// DefaultPage returns the first page with the default limit.
func DefaultPage() Page {
	return Page{Skip: 0, Limit: DefaultPageLimit}
}

// BuildPage validates skip and limit. A zero limit selects DefaultPageLimit,
// a limit above MaxPageLimit is clamped.
func BuildPage(skip int, limit int) (Page, error) {
	if skip < 0 {
		return Page{}, ValidationError("skip", "must not be negative")
	}

	if limit < 0 {
		return Page{}, ValidationError("limit", "must not be negative")
	}

	if limit == 0 {
		limit = DefaultPageLimit
	}

	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	return Page{Skip: uint(skip), Limit: uint(limit)}, nil
}
