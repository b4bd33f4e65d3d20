// Package content provides catalog and recommendation entities
package content

import "time"

// Item is a recommendable content item. Owned by the catalog; read-only here.
type Item struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	Rating     float64   `json:"rating"`
	Popularity int       `json:"popularity"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PreferenceSet is a user's declared content preferences.
type PreferenceSet struct {
	UserID           string    `json:"userId"`
	ContentTypes     []string  `json:"contentTypes"`
	Genres           []string  `json:"genres"`
	InteractionStyle string    `json:"interactionStyle"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Recommendation is one ranked result. The Reason string is presentation
// metadata, not part of the ranking contract.
type Recommendation struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Explanation describes why an item would be recommended to a user.
type Explanation struct {
	ContentID    string   `json:"contentId"`
	UserID       string   `json:"userId"`
	Reasons      []string `json:"reasons"`
	SimilarUsers int      `json:"similarUsers"`
	Confidence   int      `json:"confidence"`
}

// SimilarUser pairs a user id with its similarity to the reference user.
type SimilarUser struct {
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
}
