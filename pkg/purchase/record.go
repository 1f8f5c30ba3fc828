package purchase

import "fmt"

// Record is one output row: a purchase paired with one of its items.
type Record struct {
	Date          string `json:"date"`
	TransactionID string `json:"transaction_id"`
	TotalAmount   string `json:"total_amount"`
	ItemName      string `json:"item_name"`
	Publisher     string `json:"publisher"`
	Description   string `json:"description"`
	Price         string `json:"price"`

	// Extended layout only.
	ItemDate  string `json:"item_date,omitempty"`
	ManageURL string `json:"manage_url,omitempty"`
}

// Layout selects the column set written for each record.
type Layout string

const (
	LayoutDefault  Layout = "default"
	LayoutExtended Layout = "extended"
)

// DefaultColumns is the fixed header of the default layout.
var DefaultColumns = []string{
	"Date",
	"Transaction ID",
	"Total Amount",
	"Item Name",
	"Publisher",
	"Description",
	"Price",
}

var extendedColumns = []string{"Item Date", "Manage Subscription"}

// ParseLayout validates a layout name. Empty selects LayoutDefault.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutDefault:
		return LayoutDefault, nil
	case LayoutExtended:
		return LayoutExtended, nil
	default:
		return "", fmt.Errorf("unknown column layout: %s (use 'default' or 'extended')", s)
	}
}

// Columns returns the header for the layout.
func (l Layout) Columns() []string {
	cols := append([]string(nil), DefaultColumns...)
	if l == LayoutExtended {
		cols = append(cols, extendedColumns...)
	}
	return cols
}

// Values returns the record's cells in column order for the layout.
func (r Record) Values(l Layout) []string {
	values := []string{
		r.Date,
		r.TransactionID,
		r.TotalAmount,
		r.ItemName,
		r.Publisher,
		r.Description,
		r.Price,
	}
	if l == LayoutExtended {
		values = append(values, r.ItemDate, r.ManageURL)
	}
	return values
}

// Flatten produces one Record per item, in purchase then item order.
func Flatten(purchases []Purchase) []Record {
	var n int
	for _, p := range purchases {
		n += len(p.Items)
	}

	records := make([]Record, 0, n)
	for _, p := range purchases {
		for _, it := range p.Items {
			records = append(records, Record{
				Date:          p.Date,
				TransactionID: p.TransactionID,
				TotalAmount:   p.TotalAmount,
				ItemName:      it.Name,
				Publisher:     it.Publisher,
				Description:   it.Description,
				Price:         it.Price,
				ItemDate:      it.PurchasedAt,
				ManageURL:     it.ManageURL,
			})
		}
	}
	return records
}

// Rows converts records to table rows for the layout, without a header.
func Rows(records []Record, l Layout) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Values(l))
	}
	return rows
}
