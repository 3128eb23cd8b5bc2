package menu

// Section groups a restaurant's available items under one category heading.
type Section struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

// GroupByCategory keeps the order in which categories first appear.
func GroupByCategory(items []Item) []Section {
	var sections []Section
	index := make(map[string]int)

	for _, it := range items {
		cat := it.Category
		if cat == "" {
			cat = "Other"
		}
		i, ok := index[cat]
		if !ok {
			i = len(sections)
			index[cat] = i
			sections = append(sections, Section{Category: cat})
		}
		sections[i].Items = append(sections[i].Items, it)
	}
	return sections
}
