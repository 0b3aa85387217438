package models

// Category groups vocabulary words under a stable identifier
type Category struct {
	Name        string `json:"name" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	Words       []Word `json:"words" validate:"dive"`
}

// Find returns the word whose Spanish string matches exactly
func (c *Category) Find(spanish string) (Word, bool) {
	for _, w := range c.Words {
		if w.Spanish == spanish {
			return w, true
		}
	}
	return Word{}, false
}

// Vocabulary is the on-disk shape of the content catalog
type Vocabulary struct {
	Categories []Category `json:"categories" validate:"dive"`
}
