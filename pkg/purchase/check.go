package purchase

import (
	"fmt"
	"regexp"

	"github.com/jmylchreest/purchasehist/pkg/document"
)

// Issue is a single finding of a structure check.
type Issue struct {
	Region  string `json:"region"`
	Message string `json:"message"`
}

// CheckReport lists what Check found. Errors mean extraction will fail or
// lose data; warnings flag text that does not look as expected.
type CheckReport struct {
	Purchases int     `json:"purchases"`
	Items     int     `json:"items"`
	Errors    []Issue `json:"errors"`
	Warnings  []Issue `json:"warnings"`
}

// Valid reports whether no errors were found.
func (r *CheckReport) Valid() bool {
	return len(r.Errors) == 0
}

func (r *CheckReport) addError(region, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Region: region, Message: fmt.Sprintf(format, args...)})
}

func (r *CheckReport) addWarning(region, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Region: region, Message: fmt.Sprintf(format, args...)})
}

type compiledPatterns struct {
	date, transactionID, price *regexp.Regexp
}

func compilePatterns(p Patterns) (compiledPatterns, error) {
	var c compiledPatterns
	for _, pat := range []struct {
		name string
		src  string
		dst  **regexp.Regexp
	}{
		{"date", p.Date, &c.date},
		{"transaction_id", p.TransactionID, &c.transactionID},
		{"price", p.Price, &c.price},
	} {
		if pat.src == "" {
			continue
		}
		re, err := regexp.Compile(pat.src)
		if err != nil {
			return c, fmt.Errorf("%w: invalid %s pattern: %v", ErrInvalidProfile, pat.name, err)
		}
		*pat.dst = re
	}
	return c, nil
}

// Check verifies that doc still has the structure described by profile:
// every mandatory region is present and extracted text matches
// profile.Patterns. It never stops at the first problem.
func Check(doc *document.Document, profile Profile) (*CheckReport, error) {
	patterns, err := compilePatterns(profile.Patterns)
	if err != nil {
		return nil, err
	}

	report := &CheckReport{}

	container, ok := profile.Container.First(doc.Node)
	if !ok {
		report.addError("container", "required region not found: %s", profile.Container)
		return report, nil
	}

	blocks := profile.Purchase.All(container)
	report.Purchases = len(blocks)
	if len(blocks) == 0 {
		report.addError("purchase", "no purchase blocks found: %s", profile.Purchase)
	}

	for i, block := range blocks {
		where := fmt.Sprintf("purchase %d", i+1)

		if date, ok := profile.Date.First(block); !ok {
			report.addError("date", "%s: required region not found: %s", where, profile.Date)
		} else if text := date.NormalizedText(); patterns.date != nil && !patterns.date.MatchString(text) {
			report.addWarning("date", "%s: unexpected date %q", where, text)
		}

		if txn, ok := profile.TransactionID.First(block); !ok {
			report.addError("transaction_id", "%s: required region not found: %s", where, profile.TransactionID)
		} else if text := txn.TrimmedText(); patterns.transactionID != nil && !patterns.transactionID.MatchString(text) {
			report.addWarning("transaction_id", "%s: unexpected transaction id %q", where, text)
		}

		items := profile.Item.All(block)
		report.Items += len(items)
		if len(items) == 0 {
			report.addError("item", "%s: no items found: %s", where, profile.Item)
		}

		for j, item := range items {
			itemWhere := fmt.Sprintf("%s, item %d", where, j+1)
			if _, ok := profile.Name.First(item); !ok {
				report.addError("name", "%s: required region not found: %s", itemWhere, profile.Name)
			}

			price, ok := profile.Price.First(item)
			if !ok {
				report.addWarning("price", "%s: no price element, treated as %s", itemWhere, FreePrice)
				continue
			}
			if _, free := profile.FreeLabel.First(price); free {
				continue
			}
			if text := price.TrimmedText(); patterns.price != nil && !patterns.price.MatchString(text) {
				report.addWarning("price", "%s: unexpected price %q", itemWhere, text)
			}
		}
	}

	return report, nil
}
