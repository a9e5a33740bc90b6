package domain

import "sort"

// Card belongs to a column. Order is its zero-based rank among the column's
// cards; between completed mutations the orders of a column are 0..n-1.
type Card struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ColumnID    string `json:"columnId"`
	Order       int    `json:"order"`
}

// Clone returns a copy that can be modified without touching c
func (c *Card) Clone() *Card {
	cp := *c
	return &cp
}

// SortCards orders cards by Order, keeping the input order for ties
func SortCards(cards []*Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Order < cards[j].Order
	})
}

// SortColumns orders columns by Order, keeping the input order for ties
func SortColumns(columns []*Column) {
	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].Order < columns[j].Order
	})
}

// OrderReport describes how far a column's card orders are from 0..n-1
type OrderReport struct {
	ColumnID   string `json:"columnId"`
	CardCount  int    `json:"cardCount"`
	Orders     []int  `json:"orders"`
	Duplicates []int  `json:"duplicates"`
	Gaps       []int  `json:"gaps"`
	Consistent bool   `json:"consistent"`
}
