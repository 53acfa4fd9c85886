package economy

import "fmt"

// Economy identifies a named currency ("coins", "gems", ...). It is a plain
// value type: two economies are equal iff their names are equal, and names
// are case-sensitive. FromName performs no registry lookup; callers are
// responsible for using canonical names.
type Economy struct {
	name string
}

// FromName builds the Economy value for the given name.
func FromName(name string) Economy {
	return Economy{name: name}
}

// Name returns the economy name.
func (e Economy) Name() string {
	return e.name
}

func (e Economy) String() string {
	return fmt.Sprintf("Economy(%s)", e.name)
}
