package repository

import (
	"context"

	log "github.com/sirupsen/logrus"

	"kanladin-backend/internal/kanban/domain"
	"kanladin-backend/pkg/apperrors"
)

// SeedBoards is the demo board loaded when SEED_DATA is enabled
var SeedBoards = []*domain.Board{
	{ID: "board-1", Title: "Kanladin Project Board"},
}

var SeedColumns = []*domain.Column{
	{ID: "col-1", Title: "To Do", BoardID: "board-1", Order: 0},
	{ID: "col-2", Title: "In Progress", BoardID: "board-1", Order: 1},
	{ID: "col-3", Title: "Done", BoardID: "board-1", Order: 2},
}

var SeedCards = []*domain.Card{
	{ID: "card-1", Title: "Research API options", Description: "Compare REST vs GraphQL for our backend", ColumnID: "col-1", Order: 0},
	{ID: "card-2", Title: "Design database schema", Description: "Create initial schema for DynamoDB", ColumnID: "col-1", Order: 1},
	{ID: "card-3", Title: "Setup project structure", Description: "", ColumnID: "col-1", Order: 2},
	{ID: "card-4", Title: "Create UI components", Description: "Build Card and Column components with Tailwind", ColumnID: "col-2", Order: 0},
	{ID: "card-5", Title: "Implement drag and drop", Description: "Use DnD Kit library", ColumnID: "col-2", Order: 1},
	{ID: "card-6", Title: "Project setup", Description: "Initialize repository and configure tools", ColumnID: "col-3", Order: 0},
}

// Seed inserts the demo data. Items that already exist are left untouched,
// so seeding on every start is safe.
func Seed(ctx context.Context, boards BoardRepository, columns ColumnRepository, cards CardRepository) error {
	logger := log.WithField("component", "seed")

	for _, b := range SeedBoards {
		board := *b
		if _, err := boards.Create(ctx, &board); err != nil && !apperrors.IsConflict(err) {
			return err
		}
		logger.Debugf("seeded board %s", b.ID)
	}
	for _, c := range SeedColumns {
		column := *c
		if _, err := columns.Create(ctx, &column); err != nil && !apperrors.IsConflict(err) {
			return err
		}
		logger.Debugf("seeded column %s", c.ID)
	}
	for _, c := range SeedCards {
		card := *c
		if _, err := cards.Create(ctx, &card); err != nil && !apperrors.IsConflict(err) {
			return err
		}
		logger.Debugf("seeded card %s", c.ID)
	}

	logger.Infof("seed data loaded: %d boards, %d columns, %d cards", len(SeedBoards), len(SeedColumns), len(SeedCards))
	return nil
}
