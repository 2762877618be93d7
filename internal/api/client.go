// Package api is the typed HTTP facade for the library backend. Every method
// maps to exactly one endpoint: one request, no retries, no caching, the
// result or failure handed back verbatim. The only state the client keeps is
// the cookie jar carrying the session cookie.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Backend is the surface the UI consumes. *Client implements it; tests swap
// in fakes.
type Backend interface {
	// Books
	SearchBooks(ctx context.Context, query SearchQuery) (SearchResponse, error)
	PopularBooks(ctx context.Context, maxResults int) (SearchResponse, error)
	BooksByCategory(ctx context.Context, category string, maxResults int) (SearchResponse, error)
	BookByID(ctx context.Context, id string) (BookRecord, error)
	AllLocalBooks(ctx context.Context) ([]BookRecord, error)
	AvailableBooks(ctx context.Context) ([]BookRecord, error)
	AddToLibrary(ctx context.Context, id string) error

	// Loans
	MyLoans(ctx context.Context) ([]LoanWithBook, error)
	LoanHistory(ctx context.Context) ([]LoanWithBook, error)
	BorrowBook(ctx context.Context, bookID string) (Loan, error)
	ReturnBook(ctx context.Context, loanID string) error
	ReserveBook(ctx context.Context, bookID string) (Reservation, error)
	Reservations(ctx context.Context) ([]ReservationWithBook, error)
	OverdueLoans(ctx context.Context) ([]LoanWithBook, error)

	// Reading statuses
	ReadingStatusFor(ctx context.Context, bookID string) (*ReadingStatus, error)
	SetReadingStatus(ctx context.Context, bookID string, update ReadingStatusUpdate) (ReadingStatus, error)
	RemoveReadingStatus(ctx context.Context, bookID string) error
	Wishlist(ctx context.Context) ([]ReadingStatusWithBook, error)
	CurrentlyReading(ctx context.Context) ([]ReadingStatusWithBook, error)
	CompletedBooks(ctx context.Context) ([]ReadingStatusWithBook, error)

	// Auth
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, name, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*Session, error)
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

// Client talks to the library backend over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultServerURL      = "http://localhost:3000"
	defaultUserAgent      = "stacks/0.1"
	defaultRequestTimeout = 10 * time.Second
)

// NewClient builds a Client for the given base URL. The cookie jar keeps the
// session cookie issued at sign-in on every subsequent request.
func NewClient(serverURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// APIError is a failed request whose body carried a server-provided message.
// Views show Message verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// SearchQuery configures /api/books/search requests.
type SearchQuery struct {
	Q          string
	StartIndex int
	MaxResults int
	OrderBy    string
	Category   string
	Author     string
}

// SearchBooks queries the remote catalog through the backend.
func (c *Client) SearchBooks(ctx context.Context, query SearchQuery) (SearchResponse, error) {
	values := url.Values{}
	values.Set("q", query.Q)
	if query.StartIndex > 0 {
		values.Set("startIndex", strconv.Itoa(query.StartIndex))
	}
	if query.MaxResults > 0 {
		values.Set("maxResults", strconv.Itoa(query.MaxResults))
	}
	if orderBy := strings.TrimSpace(query.OrderBy); orderBy != "" {
		values.Set("orderBy", orderBy)
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		values.Set("category", category)
	}
	if author := strings.TrimSpace(query.Author); author != "" {
		values.Set("author", author)
	}
	var payload SearchResponse
	rel := &url.URL{Path: "/api/books/search", RawQuery: values.Encode()}
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return SearchResponse{}, err
	}
	return payload, nil
}

// PopularBooks fetches the backend's popular selection.
func (c *Client) PopularBooks(ctx context.Context, maxResults int) (SearchResponse, error) {
	values := url.Values{}
	if maxResults > 0 {
		values.Set("maxResults", strconv.Itoa(maxResults))
	}
	var payload SearchResponse
	rel := &url.URL{Path: "/api/books/popular", RawQuery: values.Encode()}
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return SearchResponse{}, err
	}
	return payload, nil
}

// BooksByCategory fetches catalog records for one category.
func (c *Client) BooksByCategory(ctx context.Context, category string, maxResults int) (SearchResponse, error) {
	values := url.Values{}
	if maxResults > 0 {
		values.Set("maxResults", strconv.Itoa(maxResults))
	}
	var payload SearchResponse
	rel := &url.URL{
		Path:     "/api/books/category/" + url.PathEscape(category),
		RawQuery: values.Encode(),
	}
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return SearchResponse{}, err
	}
	return payload, nil
}

// BookByID fetches one book record in either physical shape.
func (c *Client) BookByID(ctx context.Context, id string) (BookRecord, error) {
	var payload BookRecord
	if err := c.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(id), nil, &payload); err != nil {
		return BookRecord{}, err
	}
	return payload, nil
}

// AllLocalBooks lists every locally persisted book.
func (c *Client) AllLocalBooks(ctx context.Context) ([]BookRecord, error) {
	var payload []BookRecord
	if err := c.do(ctx, http.MethodGet, "/api/books/local/all", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// AvailableBooks lists locally persisted books with free copies.
func (c *Client) AvailableBooks(ctx context.Context) ([]BookRecord, error) {
	var payload []BookRecord
	if err := c.do(ctx, http.MethodGet, "/api/books/local/available", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// AddToLibrary imports a remote catalog record into the local collection.
// The backend treats an already-imported book as a no-op.
func (c *Client) AddToLibrary(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/books/"+url.PathEscape(id)+"/add", nil, nil)
}

// MyLoans lists the caller's active loans.
func (c *Client) MyLoans(ctx context.Context) ([]LoanWithBook, error) {
	var payload []LoanWithBook
	if err := c.do(ctx, http.MethodGet, "/api/loans/my-loans", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// LoanHistory lists the caller's complete borrowing history.
func (c *Client) LoanHistory(ctx context.Context) ([]LoanWithBook, error) {
	var payload []LoanWithBook
	if err := c.do(ctx, http.MethodGet, "/api/loans/history", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// BorrowBook creates a loan; the server sets the due date (loan date + 14 days).
func (c *Client) BorrowBook(ctx context.Context, bookID string) (Loan, error) {
	var payload Loan
	if err := c.do(ctx, http.MethodPost, "/api/loans/borrow/"+url.PathEscape(bookID), nil, &payload); err != nil {
		return Loan{}, err
	}
	return payload, nil
}

// ReturnBook closes a loan.
func (c *Client) ReturnBook(ctx context.Context, loanID string) error {
	return c.do(ctx, http.MethodPost, "/api/loans/return/"+url.PathEscape(loanID), nil, nil)
}

// ReserveBook places a hold on a book.
func (c *Client) ReserveBook(ctx context.Context, bookID string) (Reservation, error) {
	var payload Reservation
	if err := c.do(ctx, http.MethodPost, "/api/loans/reserve/"+url.PathEscape(bookID), nil, &payload); err != nil {
		return Reservation{}, err
	}
	return payload, nil
}

// Reservations lists the caller's holds.
func (c *Client) Reservations(ctx context.Context) ([]ReservationWithBook, error) {
	var payload []ReservationWithBook
	if err := c.do(ctx, http.MethodGet, "/api/loans/reservations", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// OverdueLoans lists the caller's overdue loans as judged by the server.
func (c *Client) OverdueLoans(ctx context.Context) ([]LoanWithBook, error) {
	var payload []LoanWithBook
	if err := c.do(ctx, http.MethodGet, "/api/loans/overdue", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ReadingStatusFor fetches the caller's reading status for one book, nil when
// none exists.
func (c *Client) ReadingStatusFor(ctx context.Context, bookID string) (*ReadingStatus, error) {
	var payload *ReadingStatus
	err := c.do(ctx, http.MethodGet, "/api/reading/status/"+url.PathEscape(bookID), nil, &payload)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return payload, nil
}

// SetReadingStatus upserts the caller's reading status for one book.
func (c *Client) SetReadingStatus(ctx context.Context, bookID string, update ReadingStatusUpdate) (ReadingStatus, error) {
	var payload ReadingStatus
	if err := c.do(ctx, http.MethodPost, "/api/reading/status/"+url.PathEscape(bookID), update, &payload); err != nil {
		return ReadingStatus{}, err
	}
	return payload, nil
}

// RemoveReadingStatus deletes the caller's reading status for one book.
func (c *Client) RemoveReadingStatus(ctx context.Context, bookID string) error {
	return c.do(ctx, http.MethodDelete, "/api/reading/status/"+url.PathEscape(bookID), nil, nil)
}

// Wishlist lists reading statuses with status=wishlist.
func (c *Client) Wishlist(ctx context.Context) ([]ReadingStatusWithBook, error) {
	var payload []ReadingStatusWithBook
	if err := c.do(ctx, http.MethodGet, "/api/reading/wishlist", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CurrentlyReading lists reading statuses with status=reading.
func (c *Client) CurrentlyReading(ctx context.Context) ([]ReadingStatusWithBook, error) {
	var payload []ReadingStatusWithBook
	if err := c.do(ctx, http.MethodGet, "/api/reading/currently-reading", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CompletedBooks lists reading statuses with status=completed.
func (c *Client) CompletedBooks(ctx context.Context) ([]ReadingStatusWithBook, error) {
	var payload []ReadingStatusWithBook
	if err := c.do(ctx, http.MethodGet, "/api/reading/completed", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn authenticates with email and password. The session cookie lands in
// the jar; the returned session identifies the account.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var payload *Session
	body := credentials{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/sign-in/email", body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SignUp registers an account and signs it in.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	var payload *Session
	body := credentials{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/sign-up/email", body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SignOut invalidates the current session server-side.
func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/sign-out", nil, nil)
}

// CurrentSession asks the auth provider who is signed in. A null or empty
// response means nobody is.
func (c *Client) CurrentSession(ctx context.Context) (*Session, error) {
	var payload *Session
	err := c.do(ctx, http.MethodGet, "/api/auth/get-session", nil, &payload)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if payload != nil && payload.User.ID == "" {
		return nil, nil
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeError(rel, resp)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError extracts the backend's message field when one is present. The
// backend is not consistent about where it puts the message, so all known
// spots are tried before giving up on a generic error.
func decodeError(rel *url.URL, resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var envelope struct {
			Error   json.RawMessage `json:"error"`
			Message string          `json:"message"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			if msg := messageFrom(envelope.Error); msg != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: msg}
			}
			if envelope.Message != "" {
				return &APIError{StatusCode: resp.StatusCode, Message: envelope.Message}
			}
		}
	}
	return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
}

func messageFrom(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
		return nested.Message
	}
	var flat string
	if json.Unmarshal(raw, &flat) == nil {
		return flat
	}
	return ""
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
