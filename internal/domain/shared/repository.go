package shared

// Filter carries the common listing options. OrderBy names a logical
// column; repositories only honor columns they whitelist as sortable.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}
