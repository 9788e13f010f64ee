package flow

// Action is the label returned by a postprocess step; it selects the successor.
type Action string

// DefaultAction is used when a postprocess step returns no explicit action.
const DefaultAction Action = "default"

func (a Action) orDefault() Action {
	if a == "" {
		return DefaultAction
	}
	return a
}

func actionOf(actions []Action) Action {
	if len(actions) == 0 {
		return DefaultAction
	}
	return actions[0]
}
