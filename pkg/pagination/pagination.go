package pagination

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 20
	// MaxPageSize caps how many rows any listing query can request.
	MaxPageSize = 100
)

// Params holds offset pagination inputs from callers.
type Params struct {
	Page     int
	PageSize int
}

// Normalize enforces the configured defaults and maximum page size.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	norm := p.Normalize()
	return (norm.Page - 1) * norm.PageSize
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PageSize
}
