package library

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// libraryFile is the persisted whole-state dump. Lending state (due dates,
// checked-out counts, reservation queues, held lists) is deliberately not
// part of the format: a reload starts every book fully returned. That is an
// inherent limitation of the format, not an oversight.
type libraryFile struct {
	LibraryName string       `json:"library_name"`
	Books       []bookRecord `json:"books"`
	Users       []userRecord `json:"users"`
	History     []string     `json:"history"`
}

type bookRecord struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
	Copies   int    `json:"copies"`
	Ratings  []int  `json:"ratings"`
}

type userRecord struct {
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	Fines   float64  `json:"fines"`
	History []string `json:"history"`
}

// SaveData dumps the whole library state to path as JSON.
func (l *Library) SaveData(path string) error {
	file := libraryFile{
		LibraryName: l.Name,
		Books:       make([]bookRecord, 0, len(l.Books)),
		Users:       make([]userRecord, 0, len(l.Users)),
		History:     l.History,
	}
	for _, b := range l.Books {
		file.Books = append(file.Books, bookRecord{
			Title:    b.Title,
			Author:   b.Author,
			ISBN:     b.ISBN,
			Category: b.Category,
			Copies:   b.Copies,
			Ratings:  b.Ratings,
		})
	}
	for _, u := range l.Users {
		file.Users = append(file.Users, userRecord{
			Name:    u.Name,
			Role:    u.Role,
			Fines:   u.Fines,
			History: u.History,
		})
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode library data: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write library data: %w", err)
	}
	l.logger.Info("library data saved", "path", path, "books", len(l.Books), "users", len(l.Users))
	return nil
}

// LoadData restores state from a JSON dump written by SaveData. The file is
// decoded into a scratch structure first; a missing file or malformed JSON
// leaves the in-memory state untouched. Restored books start with every
// copy on the shelf and an empty reservation queue, and restored users
// start with nothing checked out.
func (l *Library) LoadData(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read library data: %w", err)
	}
	var file libraryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decode library data: %w", err)
	}

	if file.LibraryName != "" {
		l.Name = file.LibraryName
	}
	for _, rec := range file.Books {
		b := NewBook(rec.Title, rec.Author, rec.ISBN, rec.Category, rec.Copies)
		b.Ratings = rec.Ratings
		l.Books = append(l.Books, b)
	}
	for _, rec := range file.Users {
		u := NewUser(rec.Name, rec.Role)
		u.Fines = rec.Fines
		u.History = rec.History
		l.Users = append(l.Users, u)
	}
	l.History = file.History

	l.logger.Info("library data loaded", "path", path, "books", len(file.Books), "users", len(file.Users))
	return nil
}
