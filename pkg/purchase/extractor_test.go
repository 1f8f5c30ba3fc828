package purchase

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jmylchreest/purchasehist/pkg/document"
)

// readTestdata parses an HTML fixture from the testdata directory
func readTestdata(t *testing.T, filename string) *document.Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to read testdata %s: %v", filename, err)
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		t.Fatalf("failed to parse testdata %s: %v", filename, err)
	}
	return doc
}

func parseHTML(t *testing.T, html string) *document.Document {
	t.Helper()
	doc, err := document.Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func extract(t *testing.T, doc *document.Document, opts ...Option) *Result {
	t.Helper()
	result, err := NewExtractor(DefaultProfile(), opts...).Extract(doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return result
}

// wrapPurchases places purchase blocks inside a purchases container
func wrapPurchases(blocks ...string) string {
	return `<html><body><div class="purchases empty">` + strings.Join(blocks, "\n") + `</div></body></html>`
}

func purchaseBlock(header, items string) string {
	return `<div class="purchase loaded collapsed">` + header + `<ul>` + items + `</ul></div>`
}

const standardHeader = `<span class="invoice-date">Jan 1, 2024</span>
<span data-auto-test-id="RAP2.PurchaseList.PurchaseHeader.Display.WebOrder">ORD-9</span>
<span data-auto-test-id="RAP2.PurchaseList.Display.Invoice.Amount">$1.00</span>`

// --- End-to-end Tests ---

func TestExtract_Scenario_TwoItems(t *testing.T) {
	doc := readTestdata(t, "scenario.html")
	result := extract(t, doc)

	want := [][]string{
		{"Jan 1, 2024", "ORD-001", "$12.00", "Game A", "Pub A", "", "Free"},
		{"Jan 1, 2024", "ORD-001", "$12.00", "Game B", "Pub B", "", "$5.00"},
	}
	got := Rows(result.Records(), LayoutDefault)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows mismatch\n got: %q\nwant: %q", got, want)
	}

	if result.User != "jane@example.com" {
		t.Errorf("expected trimmed user, got %q", result.User)
	}
	if result.ResultsCount != "1 result found" {
		t.Errorf("expected results count, got %q", result.ResultsCount)
	}
}

func TestExtract_History_AllFields(t *testing.T) {
	doc := readTestdata(t, "history.html")
	result := extract(t, doc)

	if len(result.Purchases) != 3 {
		t.Fatalf("expected 3 purchases, got %d", len(result.Purchases))
	}
	if result.ItemCount() != 4 {
		t.Errorf("expected 4 items, got %d", result.ItemCount())
	}

	first := result.Purchases[0]
	if first.Date != "Dec 31, 2024" {
		t.Errorf("expected normalized date, got %q", first.Date)
	}
	if first.TransactionID != "MS71XHJJ3K" {
		t.Errorf("expected trimmed transaction id, got %q", first.TransactionID)
	}

	sub := first.Items[0]
	if sub.Name != "Xbox Game Pass Ultimate" {
		t.Errorf("expected trimmed name, got %q", sub.Name)
	}
	if sub.Publisher != "Microsoft Corporation" {
		t.Errorf("expected normalized publisher, got %q", sub.Publisher)
	}
	if sub.Description != "Renews monthly on Jan 31, 2025" {
		t.Errorf("expected normalized description, got %q", sub.Description)
	}
	if sub.PurchasedAt != "Dec 31, 2024 10:15 AM" {
		t.Errorf("expected item date, got %q", sub.PurchasedAt)
	}
	if sub.ManageURL != "https://account.example.com/services" {
		t.Errorf("expected manage URL, got %q", sub.ManageURL)
	}
	if sub.Price != "$16.99" {
		t.Errorf("expected price, got %q", sub.Price)
	}

	storage := first.Items[1]
	if storage.Publisher != "" || storage.Description != "" {
		t.Errorf("expected empty publisher and description, got %+v", storage)
	}
}

// --- Container / User Tests ---

func TestExtract_MissingContainer(t *testing.T) {
	doc := parseHTML(t, `<html><body><div class="app-username">x</div></body></html>`)

	result, err := NewExtractor(DefaultProfile()).Extract(doc)
	if !errors.Is(err, ErrContainerNotFound) {
		t.Fatalf("expected ErrContainerNotFound, got %v", err)
	}
	if result != nil {
		t.Error("expected nil result on fatal error")
	}
}

func TestExtract_MissingUser_UsesPlaceholder(t *testing.T) {
	doc := parseHTML(t, wrapPurchases())
	result := extract(t, doc)

	if result.User != UnknownUser {
		t.Errorf("expected %q, got %q", UnknownUser, result.User)
	}
}

func TestExtract_EmptyContainer_NoRecords(t *testing.T) {
	doc := parseHTML(t, wrapPurchases())
	result := extract(t, doc)

	if len(result.Purchases) != 0 {
		t.Errorf("expected no purchases, got %d", len(result.Purchases))
	}
	if records := result.Records(); len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
	if result.ResultsCount != "" {
		t.Errorf("expected empty results count, got %q", result.ResultsCount)
	}
}

// --- Purchase-level Tests ---

func TestExtract_RecordsSharePurchaseFields(t *testing.T) {
	items := ""
	for _, name := range []string{"one", "two", "three"} {
		items += `<li class="pli"><div aria-label="` + name + `"></div></li>`
	}
	doc := parseHTML(t, wrapPurchases(purchaseBlock(standardHeader, items)))

	records := extract(t, doc).Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, r := range records {
		if r.Date != "Jan 1, 2024" || r.TransactionID != "ORD-9" || r.TotalAmount != "$1.00" {
			t.Errorf("record %d has differing purchase fields: %+v", i, r)
		}
	}
	if records[0].ItemName != "one" || records[1].ItemName != "two" || records[2].ItemName != "three" {
		t.Errorf("expected item order preserved, got %+v", records)
	}
}

func TestExtract_MissingTotal_EmptyString(t *testing.T) {
	header := `<span class="invoice-date">Jan 1, 2024</span>
<span data-auto-test-id="x.PurchaseHeader.Display.WebOrder">ORD-2</span>`
	items := `<li class="pli"><div aria-label="A"></div><div class="pli-publisher">P</div></li>`
	doc := parseHTML(t, wrapPurchases(purchaseBlock(header, items)))

	records := extract(t, doc).Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.TotalAmount != "" {
		t.Errorf("expected empty total, got %q", r.TotalAmount)
	}
	if r.TransactionID != "ORD-2" || r.ItemName != "A" || r.Publisher != "P" {
		t.Errorf("other fields affected: %+v", r)
	}
}

func TestExtract_MissingTransactionID_Fails(t *testing.T) {
	header := `<span class="invoice-date">Jan 1, 2024</span>`
	doc := parseHTML(t, wrapPurchases(
		purchaseBlock(standardHeader, `<li class="pli"><div aria-label="A"></div></li>`),
		purchaseBlock(header, `<li class="pli"><div aria-label="B"></div></li>`),
	))

	_, err := NewExtractor(DefaultProfile()).Extract(doc)
	if !errors.Is(err, ErrTransactionIDNotFound) {
		t.Fatalf("expected ErrTransactionIDNotFound, got %v", err)
	}

	var malformed *MalformedPurchaseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedPurchaseError, got %T", err)
	}
	if malformed.Index != 1 || malformed.Item != -1 {
		t.Errorf("unexpected error position: %+v", malformed)
	}
	if !strings.Contains(err.Error(), "purchase 2") {
		t.Errorf("expected 1-based purchase in message, got %q", err.Error())
	}
}

func TestExtract_SkipMalformed(t *testing.T) {
	doc := parseHTML(t, wrapPurchases(
		purchaseBlock(`<span class="invoice-date">Jan 1, 2024</span>`, `<li class="pli"><div aria-label="B"></div></li>`),
		purchaseBlock(standardHeader, `<li class="pli"><div aria-label="A"></div></li>`),
	))

	result := extract(t, doc, WithSkipMalformed(true))
	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped purchase, got %d", result.Skipped)
	}
	if len(result.Purchases) != 1 || result.Purchases[0].Index != 1 {
		t.Fatalf("expected only the second purchase, got %+v", result.Purchases)
	}
}

func TestExtract_MissingDate_Fails(t *testing.T) {
	header := `<span data-auto-test-id="PurchaseHeader.Display.WebOrder">ORD-3</span>`
	doc := parseHTML(t, wrapPurchases(purchaseBlock(header, "")))

	_, err := NewExtractor(DefaultProfile()).Extract(doc)
	if !errors.Is(err, ErrDateNotFound) {
		t.Fatalf("expected ErrDateNotFound, got %v", err)
	}
}

func TestExtract_MissingItemName_Fails(t *testing.T) {
	doc := parseHTML(t, wrapPurchases(purchaseBlock(standardHeader, `<li class="pli"><div>no label</div></li>`)))

	_, err := NewExtractor(DefaultProfile()).Extract(doc)
	if !errors.Is(err, ErrItemNameNotFound) {
		t.Fatalf("expected ErrItemNameNotFound, got %v", err)
	}
	var malformed *MalformedPurchaseError
	if errors.As(err, &malformed) && malformed.Item != 0 {
		t.Errorf("expected item index 0, got %d", malformed.Item)
	}
}

func TestExtract_EmptyLabel_EmptyName(t *testing.T) {
	doc := parseHTML(t, wrapPurchases(purchaseBlock(standardHeader, `<li class="pli"><div aria-label="   "></div></li>`)))

	records := extract(t, doc).Records()
	if len(records) != 1 || records[0].ItemName != "" {
		t.Errorf("expected one record with empty name, got %+v", records)
	}
}

func TestExtract_MaxPurchases(t *testing.T) {
	doc := readTestdata(t, "history.html")
	result := extract(t, doc, WithMaxPurchases(2))

	if len(result.Purchases) != 2 {
		t.Errorf("expected 2 purchases, got %d", len(result.Purchases))
	}
}

// --- Price Tests ---

func priceOf(t *testing.T, itemHTML string) string {
	t.Helper()
	doc := parseHTML(t, wrapPurchases(purchaseBlock(standardHeader, `<li class="pli"><div aria-label="X"></div>`+itemHTML+`</li>`)))
	records := extract(t, doc).Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	return records[0].Price
}

func TestExtract_Price_FreeLabelWins(t *testing.T) {
	got := priceOf(t, `<span data-auto-test-id="PLI.Display.Price">$9.99 <span data-auto-test-id="RAP2.PurchaseList.PLI.Label.Free">Free</span></span>`)
	if got != FreePrice {
		t.Errorf("expected %q, got %q", FreePrice, got)
	}
}

func TestExtract_Price_Text(t *testing.T) {
	got := priceOf(t, `<span data-auto-test-id="PLI.Display.Price">  $5.00 </span>`)
	if got != "$5.00" {
		t.Errorf("expected $5.00, got %q", got)
	}
}

func TestExtract_Price_Missing(t *testing.T) {
	if got := priceOf(t, ""); got != FreePrice {
		t.Errorf("expected %q, got %q", FreePrice, got)
	}
}

func TestExtract_Price_EmptyText(t *testing.T) {
	if got := priceOf(t, `<span data-auto-test-id="PLI.Display.Price">  </span>`); got != FreePrice {
		t.Errorf("expected %q, got %q", FreePrice, got)
	}
}

// --- Reporter Tests ---

type recordingReporter struct {
	NopReporter
	events []string
}

func (r *recordingReporter) UserFound(name string) { r.events = append(r.events, "user:"+name) }
func (r *recordingReporter) PurchasesFound(n int)  { r.events = append(r.events, "purchases") }
func (r *recordingReporter) ItemExtracted(it Item) { r.events = append(r.events, "item:"+it.Name) }
func (r *recordingReporter) Done(records int)      { r.events = append(r.events, "done") }

func TestExtract_ReporterEvents(t *testing.T) {
	doc := readTestdata(t, "scenario.html")
	rep := &recordingReporter{}
	extract(t, doc, WithReporter(rep))

	want := []string{"user:jane@example.com", "purchases", "item:Game A", "item:Game B", "done"}
	if !reflect.DeepEqual(rep.events, want) {
		t.Errorf("events = %v, want %v", rep.events, want)
	}
}

func TestConsoleReporter_Output(t *testing.T) {
	doc := readTestdata(t, "scenario.html")
	var sb strings.Builder
	extract(t, doc, WithReporter(NewConsoleReporter(&sb)))

	out := sb.String()
	for _, want := range []string{
		"Found user: jane@example.com",
		"Results count: 1 result found",
		"Found 1 purchases",
		"Processing purchase from Jan 1, 2024 with ID ORD-001 (Total: $12.00)",
		"Found 2 items in this purchase",
		"  - Item: Game B",
		"    Price: $5.00",
		"Total transactions found: 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestExtract_ManageLink_ResolvedAgainstBase(t *testing.T) {
	html := `<html><head><base href="https://account.example.com/"></head><body>
<div class="purchases empty">` + purchaseBlock(standardHeader,
		`<li class="pli"><div aria-label="Sub"></div><a class="pli-manage-subscription-link" href="services/123">Manage</a></li>`) +
		`</div></body></html>`

	records := extract(t, parseHTML(t, html)).Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := records[0].ManageURL; got != "https://account.example.com/services/123" {
		t.Errorf("ManageURL = %q", got)
	}
}
