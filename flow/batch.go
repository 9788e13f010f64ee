package flow

import (
	"context"
	"fmt"
	"reflect"
)

// executeBatch runs every item through the retry logic, strictly in order.
func (n *Node) executeBatch(ctx context.Context, prep interface{}) (interface{}, error) {
	items, err := sequence(prep)
	if err != nil {
		return nil, err
	}
	results := make([]interface{}, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if results[i], err = n.executeWithRetry(ctx, item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return results, nil
}

func sequence(value interface{}) ([]interface{}, error) {
	switch actual := value.(type) {
	case nil:
		return []interface{}{}, nil
	case []interface{}:
		return actual, nil
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		ret := make([]interface{}, v.Len())
		for i := range ret {
			ret[i] = v.Index(i).Interface()
		}
		return ret, nil
	}
	return nil, fmt.Errorf("%w: got %T", ErrNotSequence, value)
}
