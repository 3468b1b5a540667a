package main

import (
	"fmt"
	"os"

	"library-circulation/library"
)

const (
	dataFile   = "library_data.json"
	ledgerFile = "library_ledger.db"
)

type seedBook struct {
	title, author, isbn, category string
	copies                        int
	ratings                       []int
}

type seedUser struct {
	name, role string
}

func main() {
	// Start from a clean slate.
	fmt.Println("Cleaning up existing data files...")
	for _, file := range []string{dataFile, ledgerFile, ledgerFile + "-shm", ledgerFile + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: could not remove %s: %v\n", file, err)
		}
	}

	lib := library.New("Main Library")

	books := []seedBook{
		{"1984", "George Orwell", "978-0451524935", "Dystopian", 3, []int{5, 4, 5}},
		{"Animal Farm", "George Orwell", "978-0451526342", "Satire", 2, []int{4, 4}},
		{"The Fellowship of the Ring", "J.R.R. Tolkien", "978-0547928210", "Fantasy", 2, []int{5, 5, 4}},
		{"The Two Towers", "J.R.R. Tolkien", "978-0547928203", "Fantasy", 1, nil},
		{"The Return of the King", "J.R.R. Tolkien", "978-0547928197", "Fantasy", 1, []int{5}},
		{"Romeo and Juliet", "William Shakespeare", "978-0743477116", "Tragedy", 4, []int{3, 4}},
		{"The Art of War", "Sun Tzu", "978-1599869773", "Philosophy", 2, nil},
		{"The Three Musketeers", "Alexandre Dumas", "978-0140367470", "Adventure", 1, []int{4}},
	}
	for _, s := range books {
		b := library.NewBook(s.title, s.author, s.isbn, s.category, s.copies)
		b.Ratings = s.ratings
		lib.AddBook(b)
	}

	users := []seedUser{
		{"Alice", library.RoleAdmin},
		{"Bob", library.RoleUser},
		{"Charlie", library.RoleUser},
		{"Diana", library.RoleUser},
	}
	for _, s := range users {
		lib.AddUser(library.NewUser(s.name, s.role))
	}

	if err := lib.SaveData(dataFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving seed data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nSeed complete: %d books, %d users written to %s\n\n", len(lib.Books), len(lib.Users), dataFile)
	fmt.Printf("%-40s %-25s %-18s %s\n", "Title", "Author", "ISBN", "Copies")
	for _, b := range lib.Books {
		fmt.Printf("%-40s %-25s %-18s %d\n", truncate(b.Title, 40), truncate(b.Author, 25), b.ISBN, b.Copies)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
