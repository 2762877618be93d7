// Package catalog produces the canonical book view model every view renders.
// The backend serves book records in two physical shapes; normalization
// happens once here, at the data-access boundary, so nothing downstream ever
// touches a raw record.
package catalog

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/campuslib/stacks/internal/api"
	"github.com/campuslib/stacks/internal/log"
)

// Fallback literals for absent fields. The normalizer is total: every absence
// or shape mismatch degrades to one of these instead of failing.
const (
	UnknownTitle         = "Unknown Title"
	UnknownAuthor        = "Unknown Author"
	UnknownValue         = "Unknown"
	NoDescription        = "No description available"
	PlaceholderThumbnail = "https://via.placeholder.com/128x192?text=No+Cover"
)

// Book is the canonical, shape-independent book view model. Authors and
// Categories are always non-nil.
type Book struct {
	ID            string
	Title         string
	Authors       []string
	Description   string
	Thumbnail     string
	Categories    []string
	PublishedDate string
	PageCount     int
	Language      string
	ISBN          string

	// Copy counts are only meaningful for locally persisted records.
	Local           bool
	AvailableCopies int
	TotalCopies     int
}

// Normalize converts either physical record shape into the canonical model.
// Pure and total: identical input yields identical output, and no input
// fails.
func Normalize(rec api.BookRecord) Book {
	remote := rec.VolumeInfo

	book := Book{
		ID:            rec.CatalogID(),
		Title:         rec.Title,
		Description:   rec.Description,
		Thumbnail:     rec.Thumbnail,
		PublishedDate: rec.PublishedDate,
		PageCount:     rec.PageCount,
		Language:      rec.Language,
		ISBN:          rec.ISBN,
	}
	if remote == nil {
		book.Local = true
		book.AvailableCopies = rec.AvailableCopies
		book.TotalCopies = rec.TotalCopies
		book.Authors = decodeStringArray(rec.Authors, "authors", rec.ID)
		book.Categories = decodeStringArray(rec.Categories, "categories", rec.ID)
	} else {
		book.Authors = remoteOrLocalList(remote.Authors, rec.Authors, "authors", rec.ID)
		book.Categories = remoteOrLocalList(remote.Categories, rec.Categories, "categories", rec.ID)
		if remote.Title != "" {
			book.Title = remote.Title
		}
		if remote.Description != "" {
			book.Description = remote.Description
		}
		if remote.PublishedDate != "" {
			book.PublishedDate = remote.PublishedDate
		}
		if remote.PageCount > 0 {
			book.PageCount = remote.PageCount
		}
		if remote.Language != "" {
			book.Language = remote.Language
		}
		switch {
		case remote.ImageLinks.Thumbnail != "":
			book.Thumbnail = remote.ImageLinks.Thumbnail
		case remote.ImageLinks.SmallThumbnail != "":
			book.Thumbnail = remote.ImageLinks.SmallThumbnail
		}
		if book.ISBN == "" && len(remote.IndustryIdentifiers) > 0 {
			book.ISBN = remote.IndustryIdentifiers[0].Identifier
		}
	}

	if book.Title == "" {
		book.Title = UnknownTitle
	}
	if book.Description == "" {
		book.Description = NoDescription
	}
	if book.Thumbnail == "" {
		book.Thumbnail = PlaceholderThumbnail
	}
	if book.PublishedDate == "" {
		book.PublishedDate = UnknownValue
	}
	if book.Language == "" {
		book.Language = UnknownValue
	}
	return book
}

// NormalizeAll maps Normalize over a slice of records.
func NormalizeAll(records []api.BookRecord) []Book {
	books := make([]Book, len(records))
	for i, rec := range records {
		books[i] = Normalize(rec)
	}
	return books
}

// AuthorLine joins the authors for display, falling back to UnknownAuthor
// when the record named none.
func (b Book) AuthorLine() string {
	if len(b.Authors) == 0 {
		return UnknownAuthor
	}
	return strings.Join(b.Authors, ", ")
}

// CategoryLine joins the categories for display, empty when there are none.
func (b Book) CategoryLine() string {
	return strings.Join(b.Categories, ", ")
}

// PublishedYear returns the leading segment of the published date, which is
// the year for every format the metadata API emits.
func (b Book) PublishedYear() string {
	if b.PublishedDate == "" || b.PublishedDate == UnknownValue {
		return ""
	}
	return strings.SplitN(b.PublishedDate, "-", 2)[0]
}

// remoteOrLocalList prefers the remote slice and only falls back to decoding
// the local JSON-encoded string when the remote record named nothing.
func remoteOrLocalList(remote api.StringList, local, field, id string) []string {
	if len(remote) > 0 {
		out := make([]string, len(remote))
		copy(out, remote)
		return out
	}
	return decodeStringArray(local, field, id)
}

// decodeStringArray decodes a JSON-encoded array of strings stored in a
// string column. Malformed JSON degrades to a one-element slice holding the
// raw value; a decoded scalar string is wrapped. Never returns nil.
func decodeStringArray(raw, field, id string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
		if list == nil {
			return []string{}
		}
		return list
	}
	var single string
	if err := json.Unmarshal([]byte(trimmed), &single); err == nil {
		if single == "" {
			return []string{}
		}
		return []string{single}
	}
	log.Warn("malformed encoded list, keeping raw value",
		zap.String("field", field),
		zap.String("book_id", id),
	)
	return []string{raw}
}
