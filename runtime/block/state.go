package block

import (
	"encoding/json"
	"reflect"
)

// State equality is structural: the comparison runs over the JSON shape of
// both values, so map key order is irrelevant while sequence order matters.

// normalizeState reduces a value to its JSON shape (maps, slices, strings,
// float64, bool, nil).
func normalizeState(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var ret interface{}
	if err = json.Unmarshal(encoded, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// StatesEqual reports deep structural equality of two state values.
func StatesEqual(a, b interface{}) bool {
	na, errA := normalizeState(a)
	nb, errB := normalizeState(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return equalValue(na, nb)
}

func equalValue(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for key, value := range av {
			other, ok := bv[key]
			if !ok || !equalValue(value, other) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValue(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
