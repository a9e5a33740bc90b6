package usecase

import (
	"sort"

	"kanladin-backend/internal/kanban/domain"
)

// BuildOrderReport inspects the orders of one column's cards
func BuildOrderReport(columnID string, cards []*domain.Card) *domain.OrderReport {
	orders := make([]int, 0, len(cards))
	counts := make(map[int]int, len(cards))
	maxOrder := -1
	for _, c := range cards {
		orders = append(orders, c.Order)
		counts[c.Order]++
		if c.Order > maxOrder {
			maxOrder = c.Order
		}
	}
	sort.Ints(orders)

	report := &domain.OrderReport{
		ColumnID:   columnID,
		CardCount:  len(cards),
		Orders:     orders,
		Duplicates: []int{},
		Gaps:       []int{},
	}
	for order, n := range counts {
		if n > 1 {
			report.Duplicates = append(report.Duplicates, order)
		}
	}
	sort.Ints(report.Duplicates)
	for order := 0; order <= maxOrder; order++ {
		if counts[order] == 0 {
			report.Gaps = append(report.Gaps, order)
		}
	}

	report.Consistent = true
	for i, order := range orders {
		if order != i {
			report.Consistent = false
			break
		}
	}
	return report
}

func sortByOrderThenID(cards []*domain.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Order != cards[j].Order {
			return cards[i].Order < cards[j].Order
		}
		return cards[i].ID < cards[j].ID
	})
}
