package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"

	"library-circulation/library"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Styles for terminal output.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

var (
	dataFile    string
	ledgerFile  string
	libraryName string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "library-circulation",
		Short:         "Interactive library circulation system",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMenu,
	}
	rootCmd.Flags().StringVar(&dataFile, "data", getEnv("LIBRARY_DATA_FILE", "library_data.json"), "path to the JSON data file")
	rootCmd.Flags().StringVar(&ledgerFile, "ledger", getEnv("LIBRARY_LEDGER_FILE", "library_ledger.db"), "path to the circulation ledger database")
	rootCmd.Flags().StringVar(&libraryName, "name", getEnv("LIBRARY_NAME", "Main Library"), "library name")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runMenu(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	opts := []library.Option{library.WithLogger(logger)}
	ledger, err := library.OpenLedger(ledgerFile)
	if err != nil {
		logger.Warn("circulation ledger unavailable", "path", ledgerFile, "error", err)
	} else {
		defer ledger.Close()
		opts = append(opts, library.WithLedger(ledger))
	}

	lib := library.New(libraryName, opts...)
	if err := lib.LoadData(dataFile); err != nil {
		fmt.Println(dimStyle.Render("No saved data loaded. Starting with an empty library."))
	} else {
		fmt.Println(dimStyle.Render(fmt.Sprintf("Data loaded from %s", dataFile)))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		printMenu(lib.Name)
		choice, ok := prompt(scanner, "Choose an option: ")
		if !ok {
			return nil
		}

		if choice == "0" {
			fmt.Println("Exiting the Library Circulation System.")
			return nil
		}

		handler, known := handlers[choice]
		if !known {
			fmt.Println(errorStyle.Render("Invalid choice. Please try again."))
			continue
		}
		if err := handler(scanner, lib, ledger); err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
		}
	}
}

type handlerFunc func(sc *bufio.Scanner, lib *library.Library, ledger *library.Ledger) error

var handlers = map[string]handlerFunc{
	"1":  handleAddBook,
	"2":  handleRemoveBook,
	"3":  handleAddUser,
	"4":  handleCheckout,
	"5":  handleReturn,
	"6":  handleListBooks,
	"7":  handleListUsers,
	"8":  handleFindBook,
	"9":  handleReport,
	"10": handleStatistics,
	"11": handleSave,
	"12": handleRateBook,
	"13": handleReserve,
	"14": handlePayFine,
	"15": handleViewHistory,
	"16": handleLedger,
	"17": handleLoad,
}

func printMenu(name string) {
	fmt.Println()
	fmt.Println(titleStyle.Render(name + " — Library Circulation System"))
	fmt.Println(` 1. Add Book            10. Borrowing Statistics
 2. Remove Book          11. Save Data
 3. Add User             12. Rate Book
 4. Checkout Book        13. Reserve Book
 5. Return Book          14. Pay Fine
 6. List Books           15. View User History
 7. List Users           16. Circulation Ledger
 8. Find Book            17. Load Data
 9. Generate Report       0. Exit`)
}

// prompt prints a label and reads one trimmed line; ok is false on EOF.
func prompt(sc *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

// readPassword reads a password with terminal echo disabled.
func readPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// authenticate prompts for the user's password when one is set.
func authenticate(lib *library.Library, userName string) error {
	u, err := lib.LookupUser(userName)
	if err != nil {
		return err
	}
	if !u.HasPassword() {
		return nil
	}
	password, err := readPassword(fmt.Sprintf("Password for %s: ", u.Name))
	if err != nil {
		return err
	}
	return lib.Authenticate(userName, password)
}

func handleAddBook(sc *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	title, ok := prompt(sc, "Enter book title: ")
	if !ok {
		return nil
	}
	author, ok := prompt(sc, "Enter book author: ")
	if !ok {
		return nil
	}
	isbn, ok := prompt(sc, "Enter book ISBN: ")
	if !ok {
		return nil
	}
	category, ok := prompt(sc, "Enter book category: ")
	if !ok {
		return nil
	}
	copiesStr, ok := prompt(sc, "Enter number of copies: ")
	if !ok {
		return nil
	}
	copies, err := strconv.Atoi(copiesStr)
	if err != nil {
		return fmt.Errorf("invalid number of copies: %q", copiesStr)
	}

	book := library.NewBook(title, author, isbn, category, copies)
	lib.AddBook(book)
	fmt.Println(successStyle.Render(fmt.Sprintf("Book '%s' added to library '%s'.", book.Title, lib.Name)))
	return nil
}

func handleRemoveBook(sc *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	isbn, ok := prompt(sc, "Enter book ISBN to remove: ")
	if !ok {
		return nil
	}
	book, err := lib.RemoveBook(isbn)
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("Book '%s' removed from library '%s'.", book.Title, lib.Name)))
	return nil
}

func handleAddUser(sc *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	name, ok := prompt(sc, "Enter user name: ")
	if !ok {
		return nil
	}
	role, ok := prompt(sc, "Enter user role (admin/user): ")
	if !ok {
		return nil
	}

	user := library.NewUser(name, role)

	password, err := readPassword("Password (optional, press Enter to skip): ")
	if err != nil {
		return err
	}
	if password != "" {
		if err := user.SetPassword(password); err != nil {
			return err
		}
	}

	lib.AddUser(user)
	fmt.Println(successStyle.Render(fmt.Sprintf("User '%s' added to library '%s'.", user.Name, lib.Name)))
	return nil
}

func handleCheckout(sc *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	userName, ok := prompt(sc, "Enter user name: ")
	if !ok {
		return nil
	}
	title, ok := prompt(sc, "Enter book title to checkout: ")
	if !ok {
		return nil
	}
	if err := authenticate(lib, userName); err != nil {
		return err
	}

	res, err := lib.CheckoutBook(userName, title)
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("%s checked out '%s'. Due date: %s.",
		res.User.Name, res.Book.Title, res.DueDate.Format("2006-01-02"))))
	return nil
}

func handleReturn(sc *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	userName, ok := prompt(sc, "Enter user name: ")
	if !ok {
		return nil
	}
	title, ok := prompt(sc, "Enter book title to return: ")
	if !ok {
		return nil
	}
	if err := authenticate(lib, userName); err != nil {
		return err
	}

	res, err := lib.ReturnBook(userName, title)
	if err != nil {
		return err
	}

	if res.Late {
		fmt.Println(successStyle.Render(fmt.Sprintf("%s returned '%s' %d day(s) late. Fine added: $%.2f (total $%.2f).",
			res.User.Name, res.Book.Title, res.DaysLate, res.FineAdded, res.User.Fines)))
	} else {
		fmt.Println(successStyle.Render(fmt.Sprintf("%s returned '%s' on time.", res.User.Name, res.Book.Title)))
	}
	if res.AssignedTo != nil {
		fmt.Println(dimStyle.Render(fmt.Sprintf("'%s' automatically checked out to %s (next in reservation queue). Due date: %s.",
			res.Book.Title, res.AssignedTo.Name, res.AssignedDue.Format("2006-01-02"))))
	}
	return nil
}

func handleListBooks(_ *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	fmt.Println(titleStyle.Render("Library Books:"))
	if len(lib.Books) == 0 {
		fmt.Println(dimStyle.Render("No books in library."))
		return nil
	}
	for _, b := range lib.Books {
		fmt.Println(b)
	}
	return nil
}

func handleListUsers(_ *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	fmt.Println(titleStyle.Render("Library Users:"))
	if len(lib.Users) == 0 {
		fmt.Println(dimStyle.Render("No users registered."))
		return nil
	}
	for _, u := range lib.Users {
		fmt.Println(u)
	}
	return nil
}

func handleFindBook(sc *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	title, ok := prompt(sc, "Enter book title (optional): ")
	if !ok {
		return nil
	}
	author, ok := prompt(sc, "Enter author (optional): ")
	if !ok {
		return nil
	}
	category, ok := prompt(sc, "Enter category (optional): ")
	if !ok {
		return nil
	}

	found := lib.FindBooks(title, author, category)
	if len(found) == 0 {
		fmt.Println(dimStyle.Render("No books found matching the criteria."))
		return nil
	}
	for _, b := range found {
		fmt.Println(b)
	}
	return nil
}

func handleReport(_ *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	rep := lib.GenerateReport()
	fmt.Println(titleStyle.Render("Library Report:"))
	fmt.Printf("Total Books: %d\n", rep.TotalBooks)
	fmt.Printf("Total Users: %d\n", rep.TotalUsers)
	for _, u := range rep.Users {
		fmt.Printf("%s has %d books checked out and owes $%.2f in fines.\n", u.Name, u.CheckedOutBooks, u.Fines)
	}
	return nil
}

func handleStatistics(_ *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	fmt.Println(titleStyle.Render("Borrowing Statistics:"))
	stats := lib.Statistics()
	if len(stats) == 0 {
		fmt.Println(dimStyle.Render("No borrowing statistics recorded."))
		return nil
	}
	for title, count := range stats {
		fmt.Printf("%s: %d times borrowed\n", title, count)
	}
	return nil
}

func handleSave(_ *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	if err := lib.SaveData(dataFile); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("Data saved to " + dataFile))
	return nil
}

func handleLoad(_ *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	if err := lib.LoadData(dataFile); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("Data loaded from " + dataFile))
	return nil
}

func handleRateBook(sc *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	title, ok := prompt(sc, "Enter book title: ")
	if !ok {
		return nil
	}
	ratingStr, ok := prompt(sc, "Enter rating (1-5): ")
	if !ok {
		return nil
	}
	rating, err := strconv.Atoi(ratingStr)
	if err != nil {
		return fmt.Errorf("invalid rating: %q", ratingStr)
	}

	book, err := lib.RateBook(title, rating)
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("Added rating %d for '%s'. Average: %.1f.", rating, book.Title, book.AverageRating())))
	return nil
}

func handleReserve(sc *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	userName, ok := prompt(sc, "Enter user name: ")
	if !ok {
		return nil
	}
	title, ok := prompt(sc, "Enter book title to reserve: ")
	if !ok {
		return nil
	}

	res, err := lib.ReserveBook(userName, title)
	if err != nil {
		return err
	}
	if !res.Queued {
		fmt.Println(dimStyle.Render(fmt.Sprintf("'%s' is available for checkout. No reservation needed.", res.Book.Title)))
		return nil
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("%s reserved '%s'. Position in queue: %d.", res.User.Name, res.Book.Title, res.Position)))
	return nil
}

func handlePayFine(sc *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	userName, ok := prompt(sc, "Enter user name: ")
	if !ok {
		return nil
	}
	amountStr, ok := prompt(sc, "Enter payment amount: ")
	if !ok {
		return nil
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %q", amountStr)
	}

	remaining, err := lib.PayFine(userName, amount)
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("%s paid $%.2f in fines. Remaining fine: $%.2f.", userName, amount, remaining)))
	return nil
}

func handleViewHistory(sc *bufio.Scanner, lib *library.Library, _ *library.Ledger) error {
	userName, ok := prompt(sc, "Enter user name: ")
	if !ok {
		return nil
	}
	user, err := lib.LookupUser(userName)
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("Action history for %s:", user.Name)))
	if len(user.History) == 0 {
		fmt.Println(dimStyle.Render("No recorded actions."))
		return nil
	}
	for _, action := range user.History {
		fmt.Println(action)
	}
	return nil
}

func handleLedger(sc *bufio.Scanner, lib *library.Library, ledger *library.Ledger) error {
	if ledger == nil {
		return fmt.Errorf("circulation ledger is not available")
	}
	limitStr, ok := prompt(sc, "How many events (default 20): ")
	if !ok {
		return nil
	}
	limit := 20
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return fmt.Errorf("invalid count: %q", limitStr)
		}
		limit = n
	}

	entries, err := ledger.Recent(limit)
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render("Circulation Ledger (newest first):"))
	if len(entries) == 0 {
		fmt.Println(dimStyle.Render("No circulation events recorded."))
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-20s %-10s %-20s %-30s %s\n",
			e.RecordedAt.Format("2006-01-02 15:04:05"), e.Event, e.UserName, e.BookTitle, e.Detail)
	}
	return nil
}
