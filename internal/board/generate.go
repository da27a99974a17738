package board

import "fmt"

var defaultCategories = []string{
	"Science", "History", "Literature", "Geography", "Pop Culture", "Sports",
}

var defaultValues = []int{200, 400, 600, 800, 1000}

// Generate builds a placeholder board of len(categories) x len(values)
// prompts. Used by the static content source when no real question bank is
// configured.
func Generate(categories []string, values []int) (*Board, error) {
	if len(categories) == 0 {
		categories = defaultCategories
	}
	if len(values) == 0 {
		values = defaultValues
	}

	cats := make([]Category, 0, len(categories))
	for _, name := range categories {
		cat := Category{Name: name}
		for _, value := range values {
			cat.Prompts = append(cat.Prompts, &Prompt{
				ID:       fmt.Sprintf("%s_%d", name, value),
				Category: name,
				Value:    value,
				Question: fmt.Sprintf("This is a %s question for $%d", name, value),
				Answer:   fmt.Sprintf("Sample answer for %s $%d", name, value),
			})
		}
		cats = append(cats, cat)
	}

	return New(cats)
}
