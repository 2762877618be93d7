package api

import (
	"encoding/json"
	"strconv"
	"time"
)

// StringList decodes a JSON field that should be an array of strings but is
// occasionally delivered as a lone string. The upstream metadata API does not
// contract-guarantee the array shape, so a scalar is wrapped instead of
// failing the whole record.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}
	// Anything else (null, numbers, objects) degrades to empty.
	*s = nil
	return nil
}

// Timestamp decodes the backend's date fields, which arrive as RFC3339
// strings, "YYYY-MM-DD HH:MM:SS" strings, or unix epoch milliseconds
// depending on which layer produced them. Unparseable values decode to the
// zero time rather than failing the record.
type Timestamp struct {
	time.Time
}

const sqlTimestampLayout = "2006-01-02 15:04:05"

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" || raw == `""` {
		t.Time = time.Time{}
		return nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms)
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parseTime(value)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(sqlTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// ImageLinks carries the cover URLs of a remote catalog record.
type ImageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// IndustryIdentifier is an ISBN-style identifier on a remote record.
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// VolumeInfo is the metadata block of a remote catalog record.
type VolumeInfo struct {
	Title               string               `json:"title"`
	Authors             StringList           `json:"authors"`
	Description         string               `json:"description"`
	ImageLinks          ImageLinks           `json:"imageLinks"`
	Categories          StringList           `json:"categories"`
	PublishedDate       string               `json:"publishedDate"`
	PageCount           int                  `json:"pageCount"`
	Language            string               `json:"language"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
}

// BookRecord is the single wire shape for books everywhere in the API. The
// backend serves two physical record layouts: remote catalog results carry a
// volumeInfo block, locally persisted books carry flat fields with authors
// and categories as JSON-encoded strings. One decode accepts both; VolumeInfo
// being non-nil marks the remote layout. catalog.Normalize is the only
// intended consumer.
type BookRecord struct {
	ID            string      `json:"id"`
	GoogleBooksID string      `json:"googleBooksId,omitempty"`
	VolumeInfo    *VolumeInfo `json:"volumeInfo,omitempty"`

	// Local persisted layout.
	Title           string `json:"title,omitempty"`
	Authors         string `json:"authors,omitempty"`    // JSON-encoded array
	Description     string `json:"description,omitempty"`
	Thumbnail       string `json:"thumbnail,omitempty"`
	Categories      string `json:"categories,omitempty"` // JSON-encoded array
	PublishedDate   string `json:"publishedDate,omitempty"`
	PageCount       int    `json:"pageCount,omitempty"`
	Language        string `json:"language,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	AvailableCopies int    `json:"availableCopies,omitempty"`
	TotalCopies     int    `json:"totalCopies,omitempty"`
}

// CatalogID returns the identifier views should navigate with: the remote
// catalog id when the record has been imported from it, else the local id.
func (b BookRecord) CatalogID() string {
	if b.GoogleBooksID != "" {
		return b.GoogleBooksID
	}
	return b.ID
}

// SearchResponse mirrors the payload of the search and popular endpoints.
type SearchResponse struct {
	Items      []BookRecord `json:"items"`
	TotalItems int          `json:"totalItems"`
}

// Loan statuses as persisted by the backend. The server's status field is
// authoritative; client-side due-date math is display feedback only.
const (
	LoanActive   = "active"
	LoanReturned = "returned"
	LoanOverdue  = "overdue"
)

// Loan is a borrow record.
type Loan struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	BookID     string     `json:"bookId"`
	Status     string     `json:"status"`
	LoanDate   Timestamp  `json:"loanDate"`
	DueDate    Timestamp  `json:"dueDate"`
	ReturnDate *Timestamp `json:"returnDate,omitempty"`
}

// Reading statuses accepted by the reading-status upsert.
const (
	ReadingReading    = "reading"
	ReadingCompleted  = "completed"
	ReadingWishlist   = "wishlist"
	ReadingWantToRead = "want-to-read"
)

// ReadingStatus tracks one user's relationship with one book.
type ReadingStatus struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	BookID string `json:"bookId"`
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
	Rating *int   `json:"rating,omitempty"`
}

// ReadingStatusUpdate is the body of the reading-status upsert call.
type ReadingStatusUpdate struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
	Rating *int   `json:"rating,omitempty"`
}

// Reservation statuses.
const (
	ReservationPending   = "pending"
	ReservationFulfilled = "fulfilled"
	ReservationCancelled = "cancelled"
)

// Reservation is a hold on a book with no available copies.
type Reservation struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	BookID        string     `json:"bookId"`
	Status        string     `json:"status"`
	RequestDate   Timestamp  `json:"requestDate"`
	FulfilledDate *Timestamp `json:"fulfilledDate,omitempty"`
}

// LoanWithBook pairs a loan with its book record, as served by the loan
// listing endpoints.
type LoanWithBook struct {
	Loan Loan       `json:"loan"`
	Book BookRecord `json:"book"`
}

// ReadingStatusWithBook pairs a reading status with its book record.
type ReadingStatusWithBook struct {
	ReadingStatus ReadingStatus `json:"readingStatus"`
	Book          BookRecord    `json:"book"`
}

// ReservationWithBook pairs a reservation with its book record.
type ReservationWithBook struct {
	Reservation Reservation `json:"reservation"`
	Book        BookRecord  `json:"book"`
}

// User identifies the signed-in account.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Image         string `json:"image,omitempty"`
}

// SessionInfo is the server-issued proof of authentication. The client never
// writes to it.
type SessionInfo struct {
	ID        string    `json:"id"`
	ExpiresAt Timestamp `json:"expiresAt"`
	Token     string    `json:"token"`
}

// Session pairs the account with its active session. A nil *Session means
// unauthenticated.
type Session struct {
	User    User        `json:"user"`
	Session SessionInfo `json:"session"`
}
