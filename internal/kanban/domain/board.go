package domain

// Board is a named collection of columns. Columns reference it by BoardID only.
type Board struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
