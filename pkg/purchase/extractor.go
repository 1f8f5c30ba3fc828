package purchase

import (
	"errors"
	"strings"

	"github.com/jmylchreest/purchasehist/internal/logger"
	"github.com/jmylchreest/purchasehist/pkg/document"
)

// Result is everything extracted from one page.
type Result struct {
	User         string
	ResultsCount string // raw text of the results counter, empty if absent
	Purchases    []Purchase
	Skipped      int // malformed purchases dropped with WithSkipMalformed
}

// Records flattens the purchases into output rows.
func (r *Result) Records() []Record {
	return Flatten(r.Purchases)
}

// ItemCount returns the number of items across all purchases.
func (r *Result) ItemCount() int {
	n := 0
	for _, p := range r.Purchases {
		n += len(p.Items)
	}
	return n
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(e *Extractor) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithMaxPurchases stops after the first n purchase blocks. Zero means all.
func WithMaxPurchases(n int) Option {
	return func(e *Extractor) {
		e.maxPurchases = n
	}
}

// WithSkipMalformed drops purchases missing mandatory regions instead of
// failing the whole extraction.
func WithSkipMalformed(enabled bool) Option {
	return func(e *Extractor) {
		e.skipMalformed = enabled
	}
}

// Extractor walks a parsed page according to a Profile.
type Extractor struct {
	profile       Profile
	reporter      Reporter
	maxPurchases  int
	skipMalformed bool
}

// NewExtractor creates an extractor for the given profile.
func NewExtractor(profile Profile, opts ...Option) *Extractor {
	e := &Extractor{
		profile:  profile,
		reporter: NopReporter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads every purchase from doc. It returns ErrContainerNotFound
// when the page has no purchases container, and a *MalformedPurchaseError when
// a purchase lacks a mandatory region and skipping is disabled.
func (e *Extractor) Extract(doc *document.Document) (*Result, error) {
	p := e.profile
	result := &Result{User: UnknownUser}

	if n, ok := p.User.First(doc.Node); ok {
		result.User = n.TrimmedText()
	}
	e.reporter.UserFound(result.User)

	container, ok := p.Container.First(doc.Node)
	if !ok {
		logger.Debug("purchases container missing", "selector", p.Container.String())
		return nil, ErrContainerNotFound
	}

	if n, ok := p.ResultsCount.First(container); ok {
		result.ResultsCount = n.TrimmedText()
		e.reporter.ResultsCount(result.ResultsCount)
	}

	blocks := p.Purchase.All(container)
	e.reporter.PurchasesFound(len(blocks))
	if e.maxPurchases > 0 && len(blocks) > e.maxPurchases {
		logger.Debug("limiting purchases", "found", len(blocks), "max", e.maxPurchases)
		blocks = blocks[:e.maxPurchases]
	}

	result.Purchases = make([]Purchase, 0, len(blocks))
	records := 0
	for i, block := range blocks {
		purchase, err := e.extractPurchase(doc, i, block)
		if err != nil {
			var malformed *MalformedPurchaseError
			if e.skipMalformed && errors.As(err, &malformed) {
				logger.Warn("skipping malformed purchase", "error", err)
				result.Skipped++
				continue
			}
			return nil, err
		}
		result.Purchases = append(result.Purchases, purchase)
		records += len(purchase.Items)
	}

	e.reporter.Done(records)
	return result, nil
}

func (e *Extractor) extractPurchase(doc *document.Document, index int, block document.Node) (Purchase, error) {
	p := e.profile
	purchase := Purchase{Index: index}

	date, ok := p.Date.First(block)
	if !ok {
		return Purchase{}, &MalformedPurchaseError{Index: index, Item: -1, Err: ErrDateNotFound}
	}
	purchase.Date = date.NormalizedText()

	txn, ok := p.TransactionID.First(block)
	if !ok {
		return Purchase{}, &MalformedPurchaseError{Index: index, Item: -1, Err: ErrTransactionIDNotFound}
	}
	purchase.TransactionID = txn.TrimmedText()

	if total, ok := p.TotalAmount.First(block); ok {
		purchase.TotalAmount = total.TrimmedText()
	}

	nodes := p.Item.All(block)
	e.reporter.PurchaseStarted(purchase, len(nodes))

	items := make([]Item, 0, len(nodes))
	for j, node := range nodes {
		item, err := e.extractItem(doc, node)
		if err != nil {
			return Purchase{}, &MalformedPurchaseError{Index: index, Item: j, Err: err}
		}
		e.reporter.ItemExtracted(item)
		items = append(items, item)
	}
	purchase.Items = items

	logger.Debug("purchase extracted",
		"index", index,
		"transaction_id", purchase.TransactionID,
		"items", len(items))
	return purchase, nil
}

func (e *Extractor) extractItem(doc *document.Document, node document.Node) (Item, error) {
	p := e.profile
	var item Item

	labelled, ok := p.Name.First(node)
	if !ok {
		return Item{}, ErrItemNameNotFound
	}
	name, _ := labelled.Attr(p.Name.Attr)
	item.Name = strings.TrimSpace(name)

	if n, ok := p.Publisher.First(node); ok {
		item.Publisher = n.NormalizedText()
	}
	if n, ok := p.Description.First(node); ok {
		item.Description = n.NormalizedText()
	}
	item.Price = e.extractPrice(node)

	if n, ok := p.ItemDate.First(node); ok {
		item.PurchasedAt = n.NormalizedText()
	}
	if n, ok := p.ManageLink.First(node); ok {
		href, _ := n.Attr("href")
		item.ManageURL = doc.ResolveLink(href)
	}

	return item, nil
}

// extractPrice returns FreePrice when the price element is missing, carries
// the free label, or has no text.
func (e *Extractor) extractPrice(node document.Node) string {
	price, ok := e.profile.Price.First(node)
	if !ok {
		return FreePrice
	}
	if _, free := e.profile.FreeLabel.First(price); free {
		return FreePrice
	}
	if text := price.TrimmedText(); text != "" {
		return text
	}
	return FreePrice
}
