package primitive

import (
	"fmt"
	"sort"
	"strings"
)

// CategoryEnum selects which textual forms are accepted when attribute text is coerced
// into a typed value. Formatting always produces the canonical form, so any category
// set accepts what the composer writes.
type CategoryEnum int

const (
	CategoryTextualBool CategoryEnum = 1 << iota // yes, no, on, off in addition to true, false, 1, 0
	CategoryNumericBool                          // any integer: zero is false, everything else is true
	CategoryHexNumber                            // 0x, 0o, 0b prefixed and underscored integer literals
	CategorySeconds                              // bare float seconds for time.Duration, e.g. "1.5"
	CategoryTimestamp                            // integer Unix seconds for time.Time
	CategoryTrimSpace                            // surrounding whitespace is ignored for non-string kinds

	CategoryAll  CategoryEnum = (1 << iota) - 1 // all categories combined
	CategoryNone CategoryEnum = 0               // no categories selected
)

var categoryNames = map[string]CategoryEnum{
	"textual_bool": CategoryTextualBool,
	"numeric_bool": CategoryNumericBool,
	"hex_number":   CategoryHexNumber,
	"seconds":      CategorySeconds,
	"timestamp":    CategoryTimestamp,
	"trim_space":   CategoryTrimSpace,
}

// Has reports whether every category in other is selected.
func (c CategoryEnum) Has(other CategoryEnum) bool {
	return c&other == other
}

// Names returns the configuration names of the selected categories, sorted.
func (c CategoryEnum) Names() []string {
	var names []string
	for name, cat := range categoryNames {
		if c.Has(cat) {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

// ParseCategories converts configuration names into a category set.
// "all" and "none" are accepted as shorthands.
func ParseCategories(names []string) (CategoryEnum, error) {
	var result CategoryEnum

	for _, name := range names {
		switch key := strings.ToLower(strings.TrimSpace(name)); key {
		case "all":
			result |= CategoryAll
		case "none":
		default:
			cat, ok := categoryNames[key]
			if !ok {
				return CategoryNone, fmt.Errorf("unknown coercion category %q", name)
			}

			result |= cat
		}
	}

	return result, nil
}
