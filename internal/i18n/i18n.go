// Package i18n renders user-facing text in the languages the assistant
// supports.
package i18n

import (
	"strings"

	"github.com/Veraticus/sakhi/internal/model"
	"github.com/Veraticus/sakhi/internal/reconcile"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	keyTitleSuccess   = "title.success"
	keyTitlePartial   = "title.partial"
	keyTitleError     = "title.error"
	keyTitleCancelled = "title.cancelled"
	keySaved          = "desc.saved"
	keyPartial        = "desc.partial"
	keySaveFailed     = "desc.failed"
	keyNoValid        = "desc.no_valid"
	keyCancelled      = "desc.cancelled"

	LabelHeading      = "label.heading"
	LabelName         = "label.name"
	LabelQuantity     = "label.quantity"
	LabelTotal        = "label.total"
	LabelUnitPrice    = "label.unit_price"
	LabelUnit         = "label.unit"
	LabelCategory     = "label.category"
	LabelExpense      = "label.expense"
	LabelInventory    = "label.inventory"
	LabelToExpense    = "label.to_expense"
	LabelToInventory  = "label.to_inventory"
	LabelConfirm      = "label.confirm"
	LabelCancel       = "label.cancel"
	LabelSaving       = "label.saving"
	LabelGrandTotal   = "label.grand_total"
	LabelItems        = "label.items"
	LabelInvalidField = "label.invalid_field"
)

var supported = []language.Tag{language.English, language.Hindi}

var matcher = language.NewMatcher(supported)

var cat = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	strs := map[language.Tag]map[string]string{
		language.English: {
			keyTitleSuccess:   "Successfully Saved",
			keyTitlePartial:   "Partially Saved",
			keyTitleError:     "Error",
			keyTitleCancelled: "Cancelled",
			keyPartial:        "%d of %d items saved",
			keySaveFailed:     "Error saving items",
			keyNoValid:        "Please add at least one valid item",
			keyCancelled:      "Processing cancelled",
			LabelHeading:      "Please Review and Confirm Items",
			LabelName:         "Item Name",
			LabelQuantity:     "Quantity",
			LabelTotal:        "Total Amount",
			LabelUnitPrice:    "Per Unit",
			LabelUnit:         "Unit",
			LabelCategory:     "Category",
			LabelExpense:      "Expense",
			LabelInventory:    "Inventory",
			LabelToExpense:    "Goes to Expenses",
			LabelToInventory:  "Goes to Inventory",
			LabelConfirm:      "Confirm & Save",
			LabelCancel:       "Cancel",
			LabelSaving:       "Saving...",
			LabelGrandTotal:   "Total",
			LabelItems:        "items",
			LabelInvalidField: "invalid value",
		},
		language.Hindi: {
			keyTitleSuccess:   "सफलतापूर्वक सहेजा गया",
			keyTitlePartial:   "आंशिक रूप से सहेजा गया",
			keyTitleError:     "त्रुटि",
			keyTitleCancelled: "रद्द किया गया",
			keyPartial:        "%[2]d में से %[1]d आइटम सहेजे गए",
			keySaveFailed:     "आइटम सहेजने में त्रुटि हुई",
			keyNoValid:        "कम से कम एक वैध आइटम जोड़ें",
			keyCancelled:      "प्रोसेसिंग रद्द की गई",
			LabelHeading:      "कृपया आइटम की जांच करें और पुष्टि करें",
			LabelName:         "आइटम का नाम",
			LabelQuantity:     "मात्रा",
			LabelTotal:        "कुल राशि",
			LabelUnitPrice:    "प्रति यूनिट",
			LabelUnit:         "यूनिट",
			LabelCategory:     "श्रेणी",
			LabelExpense:      "खर्च",
			LabelInventory:    "स्टॉक",
			LabelToExpense:    "खर्च में जाएगा",
			LabelToInventory:  "स्टॉक में जाएगा",
			LabelConfirm:      "पुष्टि करें",
			LabelCancel:       "रद्द करें",
			LabelSaving:       "सहेज रहे हैं...",
			LabelGrandTotal:   "कुल",
			LabelItems:        "आइटम",
			LabelInvalidField: "अमान्य मान",
		},
	}
	for tag, m := range strs {
		for key, s := range m {
			mustSet(b.SetString(tag, key, s))
		}
	}

	mustSet(b.Set(language.English, keySaved,
		plural.Selectf(1, "%d", "one", "%d item saved", "other", "%d items saved")))
	mustSet(b.Set(language.Hindi, keySaved, catalog.String("%d आइटम सेव किए गए")))

	return b
}

func mustSet(err error) {
	if err != nil {
		panic(err)
	}
}

// Localizer renders text for one language.
type Localizer struct {
	printer *message.Printer
	tag     language.Tag
}

// New returns a localizer for lang, falling back to English for anything
// unsupported.
func New(lang string) *Localizer {
	tag := language.English
	if t, err := language.Parse(strings.TrimSpace(lang)); err == nil {
		_, idx, conf := matcher.Match(t)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}
}

// Language returns the resolved language code.
func (l *Localizer) Language() string {
	base, _ := l.tag.Base()
	return base.String()
}

// Label returns a table label.
func (l *Localizer) Label(key string) string {
	return l.printer.Sprintf(key)
}

// Category returns the display name of a ledger.
func (l *Localizer) Category(ledger model.Ledger) string {
	if ledger == model.LedgerInventory {
		return l.Label(LabelInventory)
	}
	return l.Label(LabelExpense)
}

// Destination describes where a row will be filed.
func (l *Localizer) Destination(ledger model.Ledger) string {
	if ledger == model.LedgerInventory {
		return l.Label(LabelToInventory)
	}
	return l.Label(LabelToExpense)
}

// Notification renders a notification as a title and description.
func (l *Localizer) Notification(n reconcile.Notification) (title, description string) {
	p := l.printer
	switch n.Outcome {
	case model.OutcomeSuccess:
		desc := strings.TrimSpace(n.Message)
		if desc == "" {
			desc = p.Sprintf(keySaved, n.Saved)
		}
		return p.Sprintf(keyTitleSuccess), desc
	case model.OutcomePartial:
		return p.Sprintf(keyTitlePartial), p.Sprintf(keyPartial, n.Saved, n.Attempted)
	case model.OutcomeInvalid:
		return p.Sprintf(keyTitleError), p.Sprintf(keyNoValid)
	case model.OutcomeCancelled:
		return p.Sprintf(keyTitleCancelled), p.Sprintf(keyCancelled)
	default:
		return p.Sprintf(keyTitleError), p.Sprintf(keySaveFailed)
	}
}
