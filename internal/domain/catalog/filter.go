package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
)

// All is the selector value that disables a category or year filter.
const All = "all"

// Filter narrows the book listing.
type Filter struct {
	Term     string `json:"term,omitempty"`
	Category string `json:"category,omitempty"`
	Year     string `json:"year,omitempty"`
}

// Normalize trims input and maps empty selectors to All.
func (f Filter) Normalize() Filter {
	out := Filter{
		Term:     strings.TrimSpace(f.Term),
		Category: strings.TrimSpace(f.Category),
		Year:     strings.TrimSpace(f.Year),
	}
	if out.Category == "" {
		out.Category = All
	}
	if out.Year == "" {
		out.Year = All
	}
	return out
}

// Signature identifies the filter combination. Two filters with equal
// signatures select the same records.
func (f Filter) Signature() string {
	n := f.Normalize()
	sum := sha256.Sum256([]byte(strings.ToLower(n.Term) + "\x00" + n.Category + "\x00" + n.Year))
	return hex.EncodeToString(sum[:8])
}

// IsZero reports whether the filter selects every record.
func (f Filter) IsZero() bool {
	n := f.Normalize()
	return n.Term == "" && n.Category == All && n.Year == All
}

// Matches reports whether b passes every part of the filter.
func (f Filter) Matches(b Book) bool {
	n := f.Normalize()
	return n.matchesTerm(b) && n.matchesCategory(b) && n.matchesYear(b)
}

func (f Filter) matchesTerm(b Book) bool {
	if f.Term == "" {
		return true
	}
	term := strings.ToLower(f.Term)
	if strings.Contains(strings.ToLower(b.Title), term) {
		return true
	}
	if b.ISBN != "" && strings.Contains(strings.ToLower(b.ISBN), term) {
		return true
	}
	return slices.ContainsFunc(b.Authors, func(a string) bool {
		return strings.Contains(strings.ToLower(a), term)
	})
}

func (f Filter) matchesCategory(b Book) bool {
	return f.Category == All || slices.Contains(b.Categories, f.Category)
}

// Years compare as decimal text: "1925" matches, "01925" does not.
func (f Filter) matchesYear(b Book) bool {
	if f.Year == All {
		return true
	}
	return b.HasYear() && strconv.Itoa(b.PublishedYear) == f.Year
}

// Apply returns the records that match, in their original order.
func (f Filter) Apply(books []Book) []Book {
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if f.Matches(b) {
			out = append(out, b)
		}
	}
	return out
}

// Facets are the choices offered by the filter dropdowns.
type Facets struct {
	Categories []string `json:"categories"`
	// Years are unique and sorted newest first.
	Years []int `json:"years"`
}

// YearsOf collects the distinct known publication years, newest first.
func YearsOf(books []Book) []int {
	var years []int
	for _, b := range books {
		if b.HasYear() && !slices.Contains(years, b.PublishedYear) {
			years = append(years, b.PublishedYear)
		}
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years
}
