// Package purchase extracts purchase-history entries from a saved purchase
// history page and flattens them into one tabular record per line item.
package purchase

import (
	"errors"
	"fmt"
)

// Sentinel values substituted for tolerated absences.
const (
	// FreePrice is the Price of items flagged free or carrying no price markup.
	FreePrice = "Free"

	// UnknownUser is reported when the page has no user block.
	UnknownUser = "Unknown User"
)

// Purchase is one transaction on the page.
type Purchase struct {
	Index         int // position among purchase blocks, 0-based
	Date          string
	TransactionID string
	TotalAmount   string
	Items         []Item
}

// Item is one line item within a Purchase.
type Item struct {
	Name        string
	Publisher   string
	Description string
	Price       string

	// Optional details only shown on some pages.
	PurchasedAt string
	ManageURL   string
}

// IsFree reports whether the item carries the Free sentinel.
func (it Item) IsFree() bool {
	return it.Price == FreePrice
}

// Errors returned by Extract. Check with errors.Is.
var (
	// ErrContainerNotFound means the page has no purchases container.
	ErrContainerNotFound = errors.New("could not find purchases container")

	// ErrTransactionIDNotFound means a purchase block has no transaction id.
	ErrTransactionIDNotFound = errors.New("transaction id not found")

	// ErrDateNotFound means a purchase block has no date element.
	ErrDateNotFound = errors.New("purchase date not found")

	// ErrItemNameNotFound means an item has no element carrying its label.
	ErrItemNameNotFound = errors.New("item name not found")

	// ErrInvalidProfile is returned for profiles failing validation.
	ErrInvalidProfile = errors.New("invalid markup profile")
)

// MalformedPurchaseError reports a purchase block missing a mandatory region.
// Use errors.As to inspect it.
type MalformedPurchaseError struct {
	Index int   // purchase block position, 0-based
	Item  int   // item position, or -1 for purchase-level regions
	Err   error // one of the ErrXNotFound sentinels
}

func (e *MalformedPurchaseError) Error() string {
	if e.Item >= 0 {
		return fmt.Sprintf("purchase %d, item %d: %v", e.Index+1, e.Item+1, e.Err)
	}
	return fmt.Sprintf("purchase %d: %v", e.Index+1, e.Err)
}

func (e *MalformedPurchaseError) Unwrap() error {
	return e.Err
}
