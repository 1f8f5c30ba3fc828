package purchase

import (
	"errors"
	"strings"
	"testing"
)

func TestCheck_History_Clean(t *testing.T) {
	doc := readTestdata(t, "history.html")

	report, err := Check(doc, DefaultProfile())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !report.Valid() {
		t.Errorf("expected no errors, got %+v", report.Errors)
	}
	if report.Purchases != 3 || report.Items != 4 {
		t.Errorf("unexpected counts: %d purchases, %d items", report.Purchases, report.Items)
	}

	// Purchase 2 has no price element, purchase 3 has an empty price.
	if len(report.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %+v", report.Warnings)
	}
}

func TestCheck_Scenario_PatternWarnings(t *testing.T) {
	doc := readTestdata(t, "scenario.html")

	report, err := Check(doc, DefaultProfile())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !report.Valid() {
		t.Errorf("expected no errors, got %+v", report.Errors)
	}

	var txnWarning bool
	for _, w := range report.Warnings {
		if w.Region == "transaction_id" && strings.Contains(w.Message, "ORD-001") {
			txnWarning = true
		}
		if w.Region == "price" {
			t.Errorf("unexpected price warning: %+v", w)
		}
	}
	if !txnWarning {
		t.Errorf("expected transaction id warning, got %+v", report.Warnings)
	}
}

func TestCheck_MissingContainer(t *testing.T) {
	doc := parseHTML(t, `<html><body></body></html>`)

	report, err := Check(doc, DefaultProfile())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if report.Valid() || report.Errors[0].Region != "container" {
		t.Errorf("expected container error, got %+v", report.Errors)
	}
}

func TestCheck_CollectsAllErrors(t *testing.T) {
	doc := parseHTML(t, wrapPurchases(
		purchaseBlock("", `<li class="pli"><div>unlabelled</div></li>`),
		purchaseBlock(standardHeader, ""),
	))

	report, err := Check(doc, DefaultProfile())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	regions := make(map[string]int)
	for _, e := range report.Errors {
		regions[e.Region]++
	}
	for _, want := range []string{"date", "transaction_id", "name", "item"} {
		if regions[want] != 1 {
			t.Errorf("expected one %s error, got %+v", want, report.Errors)
		}
	}
}

func TestCheck_NoPurchases(t *testing.T) {
	doc := parseHTML(t, wrapPurchases())

	report, err := Check(doc, DefaultProfile())
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if report.Valid() || report.Errors[0].Region != "purchase" {
		t.Errorf("expected purchase error, got %+v", report.Errors)
	}
}

func TestCheck_InvalidPattern(t *testing.T) {
	p := DefaultProfile()
	p.Patterns.Price = "(["

	_, err := Check(parseHTML(t, wrapPurchases()), p)
	if !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
}
