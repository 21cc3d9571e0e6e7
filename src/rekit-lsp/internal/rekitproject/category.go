package rekitproject

import "strings"

// Category is a kind of project artifact a selected path may represent.
type Category uint16

const (
	FeaturesFolder Category = 1 << iota
	Feature
	Component
	Page
	Action
	AsyncAction
	Reducer
	Test
	TestFolder
	// Other matches every path and is the fallback for commands available anywhere.
	Other
)

var _categoryNames = []struct {
	category Category
	name     string
}{
	{FeaturesFolder, "FeaturesFolder"},
	{Feature, "Feature"},
	{Component, "Component"},
	{Page, "Page"},
	{Action, "Action"},
	{AsyncAction, "AsyncAction"},
	{Reducer, "Reducer"},
	{Test, "Test"},
	{TestFolder, "TestFolder"},
	{Other, "Other"},
}

// String returns the category name.
func (c Category) String() string {
	for _, n := range _categoryNames {
		if n.category == c {
			return n.name
		}
	}
	return "Unknown"
}

// CategorySet is the set of categories a path matched. Overlap is possible and tolerated.
type CategorySet uint16

// NewCategorySet returns a set holding the given categories.
func NewCategorySet(categories ...Category) CategorySet {
	var s CategorySet
	for _, c := range categories {
		s = s.With(c)
	}
	return s
}

// With returns a copy of the set that includes c.
func (s CategorySet) With(c Category) CategorySet {
	return s | CategorySet(c)
}

// Contains reports whether c is a member of the set.
func (s CategorySet) Contains(c Category) bool {
	return s&CategorySet(c) != 0
}

// ContainsAny reports whether at least one of the categories is a member of the set.
func (s CategorySet) ContainsAny(categories ...Category) bool {
	for _, c := range categories {
		if s.Contains(c) {
			return true
		}
	}
	return false
}

// Categories lists the members in declaration order.
func (s CategorySet) Categories() []Category {
	var result []Category
	for _, n := range _categoryNames {
		if s.Contains(n.category) {
			result = append(result, n.category)
		}
	}
	return result
}

// String joins member names with "|".
func (s CategorySet) String() string {
	names := []string{}
	for _, c := range s.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, "|")
}
