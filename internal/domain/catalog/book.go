// Package catalog holds the book records shown on the dashboard and the
// rules for filtering and paging them.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Status is the circulation state of a book.
type Status string

const (
	StatusAvailable   Status = "Available"
	StatusCheckedOut  Status = "Checked Out"
	StatusReserved    Status = "Reserved"
	StatusMaintenance Status = "Maintenance"
)

// Statuses lists every valid status.
func Statuses() []Status {
	return []Status{StatusAvailable, StatusCheckedOut, StatusReserved, StatusMaintenance}
}

// ParseStatus validates a status label.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses() {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid book status %q", s)
}

// BadgeVariant maps a status to the badge style used on the listing.
func (s Status) BadgeVariant() string {
	switch s {
	case StatusAvailable:
		return "success"
	case StatusCheckedOut:
		return "warning"
	case StatusReserved:
		return "info"
	default:
		return "neutral"
	}
}

// Book is a catalog record.
type Book struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	ISBN           string    `json:"isbn,omitempty"`
	PublishedYear  int       `json:"publishedYear,omitempty"`
	Categories     []string  `json:"categories"`
	Authors        []string  `json:"authors"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	CreatedBy      string    `json:"createdBy"`
	LastModifiedBy string    `json:"lastModifiedBy"`
}

// HasYear reports whether the publication year is known.
func (b Book) HasYear() bool { return b.PublishedYear > 0 }

// Category is a reference label books can be tagged with.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
