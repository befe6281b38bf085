package dao

// Parameter is a name/value filter passed to List. Matching semantics are the
// implementation's concern.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a list filter parameter.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
