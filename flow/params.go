package flow

import (
	"fmt"
	"strconv"

	"github.com/viant/structology/conv"
)

// Params is the parameter bag of a unit. A flow replaces the bag of every
// unit it runs with its own merged parameters.
type Params map[string]interface{}

var converter = newConverter()

func newConverter() *conv.Converter {
	options := conv.DefaultOptions()
	options.IgnoreUnmapped = true
	return conv.NewConverter(options)
}

// Clone returns a shallow copy; a nil bag clones to an empty one.
func (p Params) Clone() Params {
	ret := make(Params, len(p))
	for k, v := range p {
		ret[k] = v
	}
	return ret
}

// Merge returns a new bag with p and overrides applied left to right; later
// values win on conflicting keys. p itself is left untouched.
func (p Params) Merge(overrides ...Params) Params {
	ret := p.Clone()
	for _, override := range overrides {
		for k, v := range override {
			ret[k] = v
		}
	}
	return ret
}

// Get returns the value stored under key.
func (p Params) Get(key string) (interface{}, bool) {
	v, ok := p[key]
	return v, ok
}

// String returns the value under key formatted as a string, or "".
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the value under key as an int, or 0 when absent or not numeric.
func (p Params) Int(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		i, _ := strconv.Atoi(v)
		return i
	}
	return 0
}

// Decode converts the bag into target, which must be a pointer (typically to
// a struct whose fields are named after the keys).
func (p Params) Decode(target interface{}) error {
	if err := converter.Convert(map[string]interface{}(p), target); err != nil {
		return fmt.Errorf("failed to decode params: %w", err)
	}
	return nil
}

func toParamsList(value interface{}) ([]Params, error) {
	switch actual := value.(type) {
	case nil:
		return nil, nil
	case []Params:
		return actual, nil
	case []map[string]interface{}:
		ret := make([]Params, len(actual))
		for i, m := range actual {
			ret[i] = m
		}
		return ret, nil
	case []interface{}:
		ret := make([]Params, len(actual))
		for i, item := range actual {
			switch m := item.(type) {
			case Params:
				ret[i] = m
			case map[string]interface{}:
				ret[i] = m
			default:
				return nil, fmt.Errorf("%w: item %d is %T", ErrInvalidBatchParams, i, item)
			}
		}
		return ret, nil
	}
	return nil, fmt.Errorf("%w: got %T", ErrInvalidBatchParams, value)
}
