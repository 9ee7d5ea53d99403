package data

import (
	"testing"

	"github.com/aoideee/bookshelf-api/internal/validator"
)

// validBook returns a book that passes validation; tests tweak single fields.
func validBook() *Book {
	return &Book{
		Title:       "The Go Programming Language",
		Author:      "Donovan and Kernighan",
		Genre:       "Programming",
		Year:        2015,
		Description: "The authoritative resource for any programmer who wants to learn Go.",
	}
}

func TestValidateBook(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(b *Book)
		wantField string // empty means the book should validate
	}{
		{"valid", func(b *Book) {}, ""},
		{"missing title", func(b *Book) { b.Title = "" }, "title"},
		{"whitespace title", func(b *Book) { b.Title = "   " }, "title"},
		{"missing author", func(b *Book) { b.Author = "" }, "author"},
		{"whitespace genre", func(b *Book) { b.Genre = "\t" }, "genre"},
		{"missing description", func(b *Book) { b.Description = "" }, "description"},
		{"missing year", func(b *Book) { b.Year = 0 }, "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := validBook()
			tt.mutate(book)

			v := validator.New()
			ValidateBook(v, book)

			if tt.wantField == "" {
				if !v.Valid() {
					t.Errorf("expected valid; got errors %v", v.Errors)
				}
				return
			}
			if v.Valid() {
				t.Fatalf("expected error on %q; got none", tt.wantField)
			}
			if _, ok := v.Errors[tt.wantField]; !ok {
				t.Errorf("expected error on %q; got %v", tt.wantField, v.Errors)
			}
		})
	}
}
