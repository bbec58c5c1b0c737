package shared

// Filter represents query filter options for list operations
type Filter struct {
	Limit    int
	OrderBy  string
	OrderDir string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Limit:    50,
		OrderBy:  "placed_at",
		OrderDir: "desc",
	}
}
