package output

import "fmt"

// Marker syntax shared bit-exact by every template backend and the client
// runtime. Hydration can only locate server-rendered nodes because both
// sides agree on these spellings.
const (
	// ScopeAttr marks a component instance's root element; its value is
	// `<ComponentName>_<renderSuffix>`.
	ScopeAttr = "data-bf-scope"
	// SlotAttr marks an element carrying reactive attributes or event
	// handlers; its value is `slot_<N>`.
	SlotAttr = "data-bf"
	// KeyAttr marks a keyed list item's root for reconciliation.
	KeyAttr = "data-bf-key"
)

// SlotValue formats the slot attribute value for a slot id
func SlotValue(id int) string {
	return fmt.Sprintf("slot_%d", id)
}

// TextOpen formats the opening comment marker of a bare reactive text run
func TextOpen(id int) string {
	return fmt.Sprintf("<!--bf:%d-->", id)
}

// TextClose formats the closing comment marker of a bare reactive text
// run. The matched-id form is used uniformly; the legacy unconditional
// `<!--/-->` close is not emitted.
func TextClose(id int) string {
	return fmt.Sprintf("<!--/bf:%d-->", id)
}

// Anchor formats the comment anchor of a conditional or list region
func Anchor(id int) string {
	return fmt.Sprintf("<!--bf-%d-->", id)
}
