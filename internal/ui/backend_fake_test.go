package ui

import (
	"context"

	"github.com/campuslib/stacks/internal/api"
)

// fakeBackend implements api.Backend with overridable function fields. Unset
// fields return zero values, so each test only wires what it exercises.
type fakeBackend struct {
	searchBooks      func(ctx context.Context, query api.SearchQuery) (api.SearchResponse, error)
	popularBooks     func(ctx context.Context, maxResults int) (api.SearchResponse, error)
	bookByID         func(ctx context.Context, id string) (api.BookRecord, error)
	myLoans          func(ctx context.Context) ([]api.LoanWithBook, error)
	loanHistory      func(ctx context.Context) ([]api.LoanWithBook, error)
	overdueLoans     func(ctx context.Context) ([]api.LoanWithBook, error)
	borrowBook       func(ctx context.Context, bookID string) (api.Loan, error)
	returnBook       func(ctx context.Context, loanID string) error
	addToLibrary     func(ctx context.Context, id string) error
	wishlist         func(ctx context.Context) ([]api.ReadingStatusWithBook, error)
	currentlyReading func(ctx context.Context) ([]api.ReadingStatusWithBook, error)
	completedBooks   func(ctx context.Context) ([]api.ReadingStatusWithBook, error)
	readingStatusFor func(ctx context.Context, bookID string) (*api.ReadingStatus, error)
	setReadingStatus func(ctx context.Context, bookID string, update api.ReadingStatusUpdate) (api.ReadingStatus, error)
	signIn           func(ctx context.Context, email, password string) (*api.Session, error)
	signUp           func(ctx context.Context, name, email, password string) (*api.Session, error)
	signOut          func(ctx context.Context) error
	currentSession   func(ctx context.Context) (*api.Session, error)

	bookByIDCalls int
}

var _ api.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) SearchBooks(ctx context.Context, query api.SearchQuery) (api.SearchResponse, error) {
	if f.searchBooks != nil {
		return f.searchBooks(ctx, query)
	}
	return api.SearchResponse{}, nil
}

func (f *fakeBackend) PopularBooks(ctx context.Context, maxResults int) (api.SearchResponse, error) {
	if f.popularBooks != nil {
		return f.popularBooks(ctx, maxResults)
	}
	return api.SearchResponse{}, nil
}

func (f *fakeBackend) BooksByCategory(ctx context.Context, category string, maxResults int) (api.SearchResponse, error) {
	return api.SearchResponse{}, nil
}

func (f *fakeBackend) BookByID(ctx context.Context, id string) (api.BookRecord, error) {
	f.bookByIDCalls++
	if f.bookByID != nil {
		return f.bookByID(ctx, id)
	}
	return api.BookRecord{}, nil
}

func (f *fakeBackend) AllLocalBooks(ctx context.Context) ([]api.BookRecord, error) {
	return nil, nil
}

func (f *fakeBackend) AvailableBooks(ctx context.Context) ([]api.BookRecord, error) {
	return nil, nil
}

func (f *fakeBackend) AddToLibrary(ctx context.Context, id string) error {
	if f.addToLibrary != nil {
		return f.addToLibrary(ctx, id)
	}
	return nil
}

func (f *fakeBackend) MyLoans(ctx context.Context) ([]api.LoanWithBook, error) {
	if f.myLoans != nil {
		return f.myLoans(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) LoanHistory(ctx context.Context) ([]api.LoanWithBook, error) {
	if f.loanHistory != nil {
		return f.loanHistory(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) BorrowBook(ctx context.Context, bookID string) (api.Loan, error) {
	if f.borrowBook != nil {
		return f.borrowBook(ctx, bookID)
	}
	return api.Loan{}, nil
}

func (f *fakeBackend) ReturnBook(ctx context.Context, loanID string) error {
	if f.returnBook != nil {
		return f.returnBook(ctx, loanID)
	}
	return nil
}

func (f *fakeBackend) ReserveBook(ctx context.Context, bookID string) (api.Reservation, error) {
	return api.Reservation{}, nil
}

func (f *fakeBackend) Reservations(ctx context.Context) ([]api.ReservationWithBook, error) {
	return nil, nil
}

func (f *fakeBackend) OverdueLoans(ctx context.Context) ([]api.LoanWithBook, error) {
	if f.overdueLoans != nil {
		return f.overdueLoans(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) ReadingStatusFor(ctx context.Context, bookID string) (*api.ReadingStatus, error) {
	if f.readingStatusFor != nil {
		return f.readingStatusFor(ctx, bookID)
	}
	return nil, nil
}

func (f *fakeBackend) SetReadingStatus(ctx context.Context, bookID string, update api.ReadingStatusUpdate) (api.ReadingStatus, error) {
	if f.setReadingStatus != nil {
		return f.setReadingStatus(ctx, bookID, update)
	}
	return api.ReadingStatus{}, nil
}

func (f *fakeBackend) RemoveReadingStatus(ctx context.Context, bookID string) error {
	return nil
}

func (f *fakeBackend) Wishlist(ctx context.Context) ([]api.ReadingStatusWithBook, error) {
	if f.wishlist != nil {
		return f.wishlist(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) CurrentlyReading(ctx context.Context) ([]api.ReadingStatusWithBook, error) {
	if f.currentlyReading != nil {
		return f.currentlyReading(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) CompletedBooks(ctx context.Context) ([]api.ReadingStatusWithBook, error) {
	if f.completedBooks != nil {
		return f.completedBooks(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) (*api.Session, error) {
	if f.signIn != nil {
		return f.signIn(ctx, email, password)
	}
	return nil, nil
}

func (f *fakeBackend) SignUp(ctx context.Context, name, email, password string) (*api.Session, error) {
	if f.signUp != nil {
		return f.signUp(ctx, name, email, password)
	}
	return nil, nil
}

func (f *fakeBackend) SignOut(ctx context.Context) error {
	if f.signOut != nil {
		return f.signOut(ctx)
	}
	return nil
}

func (f *fakeBackend) CurrentSession(ctx context.Context) (*api.Session, error) {
	if f.currentSession != nil {
		return f.currentSession(ctx)
	}
	return nil, nil
}
