package devseed

import (
	"time"

	"github.com/bookms/bookms-admin/internal/domain/auth"
	"github.com/bookms/bookms-admin/internal/domain/catalog"
)

// DemoPassword is the shared secret of every demo account.
const DemoPassword = "password123"

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Identities returns the demo directory. The last account is deactivated.
func Identities() []auth.Identity {
	return []auth.Identity{
		{ID: "1", Name: "John Smith", Email: "admin@bookms.com", Role: auth.RoleSuperAdmin, Provider: auth.ProviderEmail, Active: true},
		{ID: "2", Name: "Jane Doe", Email: "manager@bookms.com", Role: auth.RoleAdmin, Provider: auth.ProviderEmail, Active: true},
		{ID: "3", Name: "Bob Wilson", Email: "user@bookms.com", Role: auth.RoleUser, Provider: auth.ProviderEmail, Active: true},
		{ID: "4", Name: "Alice Brown", Email: "former@bookms.com", Role: auth.RoleUser, Provider: auth.ProviderEmail, Active: false},
	}
}

// Books returns the sample catalog.
func Books() []catalog.Book {
	return []catalog.Book{
		{
			ID: "1", Title: "The Great Gatsby", ISBN: "978-0-7432-7356-5", PublishedYear: 1925,
			Categories: []string{"Fiction", "Classic Literature"},
			Authors:    []string{"F. Scott Fitzgerald"},
			Status:     catalog.StatusAvailable,
			CreatedAt:  ts("2024-01-15T10:00:00Z"), UpdatedAt: ts("2024-01-15T10:00:00Z"),
			CreatedBy: "admin@bookms.com", LastModifiedBy: "admin@bookms.com",
		},
		{
			ID: "2", Title: "To Kill a Mockingbird", ISBN: "978-0-06-112008-4", PublishedYear: 1960,
			Categories: []string{"Fiction", "Drama"},
			Authors:    []string{"Harper Lee"},
			Status:     catalog.StatusCheckedOut,
			CreatedAt:  ts("2024-01-16T11:00:00Z"), UpdatedAt: ts("2024-01-16T11:00:00Z"),
			CreatedBy: "admin@bookms.com", LastModifiedBy: "manager@bookms.com",
		},
		{
			ID: "3", Title: "JavaScript: The Definitive Guide", ISBN: "978-1-491-95202-3", PublishedYear: 2020,
			Categories: []string{"Technology", "Programming"},
			Authors:    []string{"David Flanagan"},
			Status:     catalog.StatusAvailable,
			CreatedAt:  ts("2024-01-17T12:00:00Z"), UpdatedAt: ts("2024-01-17T12:00:00Z"),
			CreatedBy: "user@bookms.com", LastModifiedBy: "user@bookms.com",
		},
		{
			ID: "4", Title: "Clean Code", ISBN: "978-0-13-235088-4", PublishedYear: 2008,
			Categories: []string{"Technology", "Software Engineering"},
			Authors:    []string{"Robert C. Martin"},
			Status:     catalog.StatusReserved,
			CreatedAt:  ts("2024-01-18T13:00:00Z"), UpdatedAt: ts("2024-01-18T13:00:00Z"),
			CreatedBy: "admin@bookms.com", LastModifiedBy: "admin@bookms.com",
		},
	}
}

// Categories returns the category reference list in display order.
func Categories() []catalog.Category {
	names := []string{"Fiction", "Technology", "Classic Literature", "Drama", "Programming", "Software Engineering"}
	out := make([]catalog.Category, len(names))
	for i, n := range names {
		out[i] = catalog.Category{ID: n, Name: n}
	}
	return out
}

// CategoryNames returns the names of Categories.
func CategoryNames() []string {
	cats := Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Name
	}
	return out
}
