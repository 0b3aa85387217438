package models

// Provenance tells why a word was put into a review session
type Provenance string

const (
	// ProvenanceDue marks a previously attempted word whose review date has come
	ProvenanceDue Provenance = "due"
	// ProvenanceNew marks a catalog word that has never been attempted
	ProvenanceNew Provenance = "new"
)

// ReviewItem is one card of a review session. It is built per session and never stored.
type ReviewItem struct {
	Word            Word       `json:"word"`
	Category        string     `json:"category_name"`
	CategoryDisplay string     `json:"category_display"`
	MasteryLevel    int        `json:"mastery_level"`
	Provenance      Provenance `json:"provenance"`
}

// Key returns the (category, word) pair identifying the item
func (i ReviewItem) Key() WordKey {
	return WordKey{Category: i.Category, Spanish: i.Word.Spanish}
}

// WordKey identifies a vocabulary word across categories
type WordKey struct {
	Category string
	Spanish  string
}
