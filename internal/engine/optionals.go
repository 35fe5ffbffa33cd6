package engine

import "sort"

// optional is a named recognition extension enabled with --enable.
type optional struct {
	name string
	// named adds methods called as <receiver>.<method>("name", fn).
	named []string
	// bare adds free function calls of the form <fn>(fn).
	bare []string
}

var optionals = []optional{
	{name: "angular-dashboard-framework", named: []string{"widget"}},
	{name: "ngmock-inject", bare: []string{"inject"}},
}

// builtin registration methods taking a name and an injectable function.
var namedMethods = []string{
	"controller", "directive", "filter", "service", "factory",
	"decorator", "animation", "provider",
}

// builtin registration methods taking only an injectable function.
var singleMethods = []string{"config", "run"}

// OptionalNames returns the sorted names of all optional features.
func OptionalNames() []string {
	names := make([]string, 0, len(optionals))
	for _, o := range optionals {
		names = append(names, o.name)
	}
	sort.Strings(names)
	return names
}

func findOptional(name string) (optional, bool) {
	for _, o := range optionals {
		if o.name == name {
			return o, true
		}
	}
	return optional{}, false
}
