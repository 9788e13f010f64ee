package dao

// Parameter narrows a List call to records whose Name field equals Value;
// a []string Value matches any of its elements.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter returns a single value parameter, or an any-of parameter when
// more than one value is given.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// Values returns the accepted values; nil when Value is neither a string nor a
// []string.
func (p *Parameter) Values() []string {
	switch actual := p.Value.(type) {
	case string:
		return []string{actual}
	case []string:
		return actual
	}
	return nil
}
