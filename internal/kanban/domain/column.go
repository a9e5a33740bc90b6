package domain

// Column belongs to a board. Order is its zero-based rank among the board's
// columns, supplied by the caller and never shifted automatically.
type Column struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	BoardID string `json:"boardId"`
	Order   int    `json:"order"`
}
