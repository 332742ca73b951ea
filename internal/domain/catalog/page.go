package catalog

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects a 1-indexed page.
type PageRequest struct {
	Number int `json:"page"`
	Size   int `json:"size"`
}

// Normalize applies the defaults: page numbers start at 1, size falls back to
// DefaultPageSize and is capped at MaxPageSize.
func (p PageRequest) Normalize() PageRequest {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// ResetOnChange returns page 1 when f differs from the filter the page number was
// chosen under, identified by prevSignature. An empty prevSignature keeps the page.
func (p PageRequest) ResetOnChange(prevSignature string, f Filter) PageRequest {
	if prevSignature != "" && prevSignature != f.Signature() {
		p.Number = 1
	}
	return p
}

// Offset is the index of the first record on the page.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.Size
}

// Result is what a catalog returns for one page.
type Result struct {
	Records    []Book `json:"records"`
	TotalCount int    `json:"totalCount"`
}

// Page is a Result annotated for display.
type Page struct {
	Records    []Book `json:"records"`
	TotalCount int    `json:"totalCount"`
	Number     int    `json:"page"`
	Size       int    `json:"size"`
	TotalPages int    `json:"totalPages"`
	// From and To are the 1-based positions shown as "Showing From-To of TotalCount".
	// Both are zero when the page is empty.
	From int `json:"from"`
	To   int `json:"to"`
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// TotalPages is ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Window returns the bounds of [(n-1)*size, n*size) clamped to total.
func Window(total int, req PageRequest) (start, end int) {
	n := req.Normalize()
	start = min(n.Offset(), max(total, 0))
	end = min(start+n.Size, max(total, 0))
	return start, end
}

// Paginate slices an already filtered collection.
func Paginate(records []Book, req PageRequest) Page {
	start, end := Window(len(records), req)
	return NewPage(Result{Records: records[start:end], TotalCount: len(records)}, req)
}

// NewPage annotates a catalog result with paging metadata.
func NewPage(res Result, req PageRequest) Page {
	n := req.Normalize()
	p := Page{
		Records:    res.Records,
		TotalCount: res.TotalCount,
		Number:     n.Number,
		Size:       n.Size,
		TotalPages: TotalPages(res.TotalCount, n.Size),
	}
	if p.Records == nil {
		p.Records = []Book{}
	}
	if len(p.Records) > 0 {
		p.From = n.Offset() + 1
		p.To = n.Offset() + len(p.Records)
	}
	return p
}
