package purchase

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/purchasehist/pkg/document"
)

// Selector locates one region of the page: an element tag plus an
// attribute condition.
type Selector struct {
	Tag   string             `json:"tag,omitempty" yaml:"tag,omitempty"`
	Match document.MatchKind `json:"match" yaml:"match" validate:"required,oneof=exact present contains class"`
	Attr  string             `json:"attr,omitempty" yaml:"attr,omitempty" validate:"required_unless=Match class"`
	Value string             `json:"value,omitempty" yaml:"value,omitempty" validate:"required_unless=Match present"`
}

// ClassSelector matches tag elements carrying every class in classes.
func ClassSelector(tag, classes string) Selector {
	return Selector{Tag: tag, Match: document.MatchClass, Attr: "class", Value: classes}
}

// AttrSelector matches tag elements whose attr satisfies match against value.
func AttrSelector(tag string, match document.MatchKind, attr, value string) Selector {
	return Selector{Tag: tag, Match: match, Attr: attr, Value: value}
}

// Filter converts the selector to a document filter.
func (s Selector) Filter() document.Filter {
	switch s.Match {
	case document.MatchClass:
		return document.Class(s.Value)
	case document.MatchPresent:
		return document.Present(s.Attr)
	case document.MatchContains:
		return document.Contains(s.Attr, s.Value)
	default:
		return document.Exact(s.Attr, s.Value)
	}
}

// First returns the first match under n.
func (s Selector) First(n document.Node) (document.Node, bool) {
	return n.FindFirst(s.Tag, s.Filter())
}

// All returns every match under n in document order.
func (s Selector) All(n document.Node) []document.Node {
	return n.FindAll(s.Tag, s.Filter())
}

func (s Selector) String() string {
	return s.Tag + s.Filter().String()
}

// Patterns are the expected shapes of extracted text checked by Check.
// Empty patterns are skipped.
type Patterns struct {
	Date          string `json:"date,omitempty" yaml:"date,omitempty"`
	TransactionID string `json:"transaction_id,omitempty" yaml:"transaction_id,omitempty"`
	Price         string `json:"price,omitempty" yaml:"price,omitempty"`
}

// Profile describes where each field lives in the page markup.
type Profile struct {
	User         Selector `json:"user" yaml:"user"`
	Container    Selector `json:"container" yaml:"container"`
	ResultsCount Selector `json:"results_count" yaml:"results_count"`
	Purchase     Selector `json:"purchase" yaml:"purchase"`

	Date          Selector `json:"date" yaml:"date"`
	TransactionID Selector `json:"transaction_id" yaml:"transaction_id"`
	TotalAmount   Selector `json:"total_amount" yaml:"total_amount"`

	Item        Selector `json:"item" yaml:"item"`
	Name        Selector `json:"name" yaml:"name"`
	Publisher   Selector `json:"publisher" yaml:"publisher"`
	Description Selector `json:"description" yaml:"description"`
	Price       Selector `json:"price" yaml:"price"`
	FreeLabel   Selector `json:"free_label" yaml:"free_label"`
	ItemDate    Selector `json:"item_date" yaml:"item_date"`
	ManageLink  Selector `json:"manage_link" yaml:"manage_link"`

	Patterns Patterns `json:"patterns" yaml:"patterns"`
}

// DefaultProfile returns the markers of the Microsoft purchase history page.
func DefaultProfile() Profile {
	const testID = "data-auto-test-id"
	return Profile{
		User:         ClassSelector("div", "app-username"),
		Container:    ClassSelector("div", "purchases empty"),
		ResultsCount: ClassSelector("span", "result-found"),
		Purchase:     ClassSelector("div", "purchase loaded collapsed"),

		Date:          ClassSelector("span", "invoice-date"),
		TransactionID: AttrSelector("span", document.MatchContains, testID, "PurchaseHeader.Display.WebOrder"),
		TotalAmount:   AttrSelector("span", document.MatchExact, testID, "RAP2.PurchaseList.Display.Invoice.Amount"),

		Item:        ClassSelector("li", "pli"),
		Name:        AttrSelector("div", document.MatchPresent, "aria-label", ""),
		Publisher:   ClassSelector("div", "pli-publisher"),
		Description: ClassSelector("div", "pli-subscription-info"),
		Price:       AttrSelector("span", document.MatchContains, testID, "Price"),
		FreeLabel:   AttrSelector("span", document.MatchExact, testID, "RAP2.PurchaseList.PLI.Label.Free"),
		ItemDate:    ClassSelector("div", "pli-purchase-date"),
		ManageLink:  ClassSelector("a", "pli-manage-subscription-link"),

		Patterns: Patterns{
			Date:          `^[A-Z][a-z]{2,8}\s+\d{1,2},\s+\d{4}$`,
			TransactionID: `^[A-Z0-9]{10}$`,
			Price:         `^(\$\d+\.\d{2}|Free)$`,
		},
	}
}

// LoadProfile reads a JSON or YAML profile from path. Fields absent from the
// file keep their DefaultProfile values.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads a user-specified profile
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	p := DefaultProfile()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("failed to parse JSON profile: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("failed to parse YAML profile: %w", err)
		}
	default:
		return Profile{}, fmt.Errorf("unsupported profile file format: %s", ext)
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

var validate = validator.New()

// Validate checks that every selector is usable. The returned error wraps
// ErrInvalidProfile.
func (p Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", profileFieldPath(e), describeRule(e)))
	}
	return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(msgs, "; "))
}

// profileFieldPath turns "Profile.Price.Value" into "price.value".
func profileFieldPath(e validator.FieldError) string {
	ns := strings.TrimPrefix(e.StructNamespace(), "Profile.")
	return strings.ToLower(ns)
}

func describeRule(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_unless":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
