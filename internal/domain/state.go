package domain

// State is one step of the shopping conversation. Values are stable
// textual tags: they are persisted verbatim in the session store, so
// renaming one is a breaking change for live sessions.
type State string

const (
	// StateStart renders the product menu on the next event.
	StateStart State = "start"
	// StateMenu waits for a product to be picked from the menu.
	StateMenu State = "menu"
	// StateDescription shows one product and waits for a quantity choice.
	StateDescription State = "description"
	// StateCart shows the cart and waits for remove/checkout/back.
	StateCart State = "cart"
	// StateEmail waits for the checkout email address.
	StateEmail State = "email"
)

// ParseState decodes a stored state tag. Anything unrecognized
// (including values written by older deployments) degrades to
// StateStart, the state every session can safely re-enter.
func ParseState(s string) State {
	switch State(s) {
	case StateStart, StateMenu, StateDescription, StateCart, StateEmail:
		return State(s)
	default:
		return StateStart
	}
}
