package purchase

import (
	"fmt"
	"io"
)

// Reporter receives progress notifications while a page is extracted.
type Reporter interface {
	UserFound(name string)
	ResultsCount(text string)
	PurchasesFound(n int)
	PurchaseStarted(p Purchase, items int)
	ItemExtracted(it Item)
	Done(records int)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) UserFound(string)              {}
func (NopReporter) ResultsCount(string)           {}
func (NopReporter) PurchasesFound(int)            {}
func (NopReporter) PurchaseStarted(Purchase, int) {}
func (NopReporter) ItemExtracted(Item)            {}
func (NopReporter) Done(int)                      {}

// ConsoleReporter prints human-readable progress lines.
type ConsoleReporter struct {
	w io.Writer
}

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *ConsoleReporter) UserFound(name string) {
	r.printf("Found user: %s", name)
}

func (r *ConsoleReporter) ResultsCount(text string) {
	r.printf("Results count: %s", text)
}

func (r *ConsoleReporter) PurchasesFound(n int) {
	r.printf("Found %d purchases", n)
}

func (r *ConsoleReporter) PurchaseStarted(p Purchase, items int) {
	r.printf("\nProcessing purchase from %s with ID %s (Total: %s)", p.Date, p.TransactionID, p.TotalAmount)
	r.printf("Found %d items in this purchase", items)
}

func (r *ConsoleReporter) ItemExtracted(it Item) {
	r.printf("  - Item: %s", it.Name)
	r.printf("    Publisher: %s", it.Publisher)
	r.printf("    Price: %s", it.Price)
}

func (r *ConsoleReporter) Done(records int) {
	r.printf("\nTotal transactions found: %d", records)
}
