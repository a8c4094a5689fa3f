package view

import "github.com/Cossomoj/booksmood/internal/domain"

// Shelf size limits for the home screen.
const (
	MaxContinueListening = 5
	MaxNewBooks          = 6
)

// Card decorates a catalog book with presentation fields: a placeholder
// color derived from the cover blurhash and the description rendered as
// plain text.
type Card struct {
	domain.Book
	CoverColor  string
	Description string
}

func newCard(book domain.Book) Card {
	color, err := PlaceholderColor(book.CoverBlurhash)
	if err != nil {
		color = DefaultCoverColor
	}
	return Card{
		Book:        book,
		CoverColor:  color,
		Description: DescriptionText(book.Description),
	}
}

// Home is the composed home screen: a featured book plus two shelves. The
// shelves are disjoint, a started book never reappears under new arrivals.
type Home struct {
	Featured          *Card
	ContinueListening []Card
	NewBooks          []Card
}

// BuildHome derives the home screen from the catalog list. The first book
// is featured; books with a saved position fill the continue shelf, the
// rest fill the new shelf. A progress record at position zero still counts
// as new.
func BuildHome(books []domain.Book) Home {
	var home Home
	if len(books) > 0 {
		featured := newCard(books[0])
		home.Featured = &featured
	}

	for _, book := range books {
		switch {
		case book.Started():
			if len(home.ContinueListening) < MaxContinueListening {
				home.ContinueListening = append(home.ContinueListening, newCard(book))
			}
		default:
			if len(home.NewBooks) < MaxNewBooks {
				home.NewBooks = append(home.NewBooks, newCard(book))
			}
		}
	}
	return home
}
