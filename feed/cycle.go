// Package feed models the operator's capacity-nomination feed: the fixed
// cycle catalog, artifact identities, and the locator that maps a
// (gas day, cycle) pair to its fetch URL and canonical filename.
package feed

import "fmt"

// CycleDefinition pairs a human-readable nomination cycle name with the
// operator's numeric cycle code.
type CycleDefinition struct {
	Name string
	Code int
}

// Catalog is the fixed set of intraday nomination cycles, in the order the
// acquisition window iterates them. The operator's codes are not contiguous.
var Catalog = []CycleDefinition{
	{Name: "timely", Code: 0},
	{Name: "evening", Code: 1},
	{Name: "intraday_1", Code: 3},
	{Name: "intraday_2", Code: 4},
	{Name: "final", Code: 5},
	{Name: "intraday_3", Code: 7},
}

// CycleByCode looks up a catalog entry by its numeric code
func CycleByCode(code int) (CycleDefinition, bool) {
	for _, c := range Catalog {
		if c.Code == code {
			return c, true
		}
	}
	return CycleDefinition{}, false
}

// CycleByName looks up a catalog entry by name
func CycleByName(name string) (CycleDefinition, bool) {
	for _, c := range Catalog {
		if c.Name == name {
			return c, true
		}
	}
	return CycleDefinition{}, false
}

func (c CycleDefinition) String() string {
	return fmt.Sprintf("%s (cycle %d)", c.Name, c.Code)
}
