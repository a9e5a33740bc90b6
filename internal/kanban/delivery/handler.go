package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kanladin-backend/internal/kanban/usecase"
	"kanladin-backend/pkg/apperrors"
)

// KanbanHandler handles board, column and card HTTP requests
type KanbanHandler struct {
	boardUsecase  usecase.BoardUsecase
	columnUsecase usecase.ColumnUsecase
	cardUsecase   usecase.CardUsecase
}

// NewKanbanHandler creates a new KanbanHandler
func NewKanbanHandler(boards usecase.BoardUsecase, columns usecase.ColumnUsecase, cards usecase.CardUsecase) *KanbanHandler {
	return &KanbanHandler{
		boardUsecase:  boards,
		columnUsecase: columns,
		cardUsecase:   cards,
	}
}

// BoardRequest represents the request body for creating or renaming a board
type BoardRequest struct {
	Title string `json:"title"`
}

// CreateColumnRequest represents the request body for creating a column
type CreateColumnRequest struct {
	Title   string `json:"title"`
	BoardID string `json:"boardId" binding:"required"`
	Order   *int   `json:"order" binding:"required"`
}

// ColumnOrderRequest lists a board's column IDs in their new order
type ColumnOrderRequest struct {
	Columns []string `json:"columns" binding:"required"`
}

// MoveCardRequest represents the request body for moving a card
type MoveCardRequest struct {
	ColumnID string `json:"columnId" binding:"required"`
	Order    *int   `json:"order"`
}

// CardOrderRequest represents the request body for reordering a card
type CardOrderRequest struct {
	Order *int `json:"order" binding:"required"`
}

// GetBoards returns all boards
// GET /api/boards
func (h *KanbanHandler) GetBoards(c *gin.Context) {
	boards, err := h.boardUsecase.GetAllBoards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

// GetBoard returns one board
// GET /api/boards/:id
func (h *KanbanHandler) GetBoard(c *gin.Context) {
	board, err := h.boardUsecase.GetBoardByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// CreateBoard creates a board
// POST /api/boards
func (h *KanbanHandler) CreateBoard(c *gin.Context) {
	var req BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := h.boardUsecase.CreateBoard(c.Request.Context(), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// UpdateBoard renames a board
// PUT /api/boards/:id
func (h *KanbanHandler) UpdateBoard(c *gin.Context) {
	var req BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := h.boardUsecase.UpdateBoard(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// DeleteBoard deletes a board
// DELETE /api/boards/:id
func (h *KanbanHandler) DeleteBoard(c *gin.Context) {
	ok, err := h.boardUsecase.DeleteBoard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// GetBoardColumns returns the board's columns sorted by order
// GET /api/boards/:id/columns
func (h *KanbanHandler) GetBoardColumns(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.boardUsecase.GetBoardByID(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	columns, err := h.columnUsecase.GetColumnsByBoardID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, columns)
}

// UpdateColumnOrder gives the listed columns of a board orders 0..n-1
// PUT /api/boards/:id/columns/order
func (h *KanbanHandler) UpdateColumnOrder(c *gin.Context) {
	var req ColumnOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	boardID := c.Param("id")
	if _, err := h.boardUsecase.GetBoardByID(ctx, boardID); err != nil {
		respondError(c, err)
		return
	}
	if len(req.Columns) > 0 {
		first, err := h.columnUsecase.GetColumnByID(ctx, req.Columns[0])
		if err != nil {
			respondError(c, err)
			return
		}
		if first.BoardID != boardID {
			respondError(c, apperrors.NewValidation("Column %s does not belong to board %s", first.ID, boardID))
			return
		}
	}

	columns, err := h.columnUsecase.ReorderColumns(ctx, req.Columns)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, columns)
}

// GetColumns returns all columns
// GET /api/columns
func (h *KanbanHandler) GetColumns(c *gin.Context) {
	columns, err := h.columnUsecase.GetAllColumns(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, columns)
}

// GetColumn returns one column
// GET /api/columns/:id
func (h *KanbanHandler) GetColumn(c *gin.Context) {
	column, err := h.columnUsecase.GetColumnByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, column)
}

// CreateColumn creates a column at the given order
// POST /api/columns
func (h *KanbanHandler) CreateColumn(c *gin.Context) {
	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	column, err := h.columnUsecase.CreateColumn(c.Request.Context(), req.Title, req.BoardID, *req.Order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, column)
}

// UpdateColumn patches a column's title and order
// PUT /api/columns/:id
func (h *KanbanHandler) UpdateColumn(c *gin.Context) {
	var updates usecase.ColumnUpdateRequest
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	column, err := h.columnUsecase.UpdateColumn(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, column)
}

// DeleteColumn deletes a column
// DELETE /api/columns/:id
func (h *KanbanHandler) DeleteColumn(c *gin.Context) {
	ok, err := h.columnUsecase.DeleteColumn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// GetColumnCards returns the column's cards sorted by order
// GET /api/columns/:id/cards
func (h *KanbanHandler) GetColumnCards(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.columnUsecase.GetColumnByID(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	cards, err := h.cardUsecase.GetCardsByColumnID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// CheckColumnOrder reports duplicate and missing card orders
// GET /api/columns/:id/consistency
func (h *KanbanHandler) CheckColumnOrder(c *gin.Context) {
	report, err := h.cardUsecase.CheckColumnOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RepairColumnOrder renumbers a column's cards to 0..n-1
// POST /api/columns/:id/repair
func (h *KanbanHandler) RepairColumnOrder(c *gin.Context) {
	report, err := h.cardUsecase.RepairColumnOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetCards returns all cards
// GET /api/cards
func (h *KanbanHandler) GetCards(c *gin.Context) {
	cards, err := h.cardUsecase.GetAllCards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// GetCard returns one card
// GET /api/cards/:id
func (h *KanbanHandler) GetCard(c *gin.Context) {
	card, err := h.cardUsecase.GetCardByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// CreateCard creates a card, appended unless an order is given
// POST /api/cards
func (h *KanbanHandler) CreateCard(c *gin.Context) {
	var req usecase.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.cardUsecase.CreateCard(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// UpdateCard patches a card
// PUT /api/cards/:id
func (h *KanbanHandler) UpdateCard(c *gin.Context) {
	var updates usecase.CardUpdateRequest
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.cardUsecase.UpdateCard(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// DeleteCard deletes a card
// DELETE /api/cards/:id
func (h *KanbanHandler) DeleteCard(c *gin.Context) {
	ok, err := h.cardUsecase.DeleteCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// MoveCard moves a card to another column
// PATCH /api/cards/:id/move
func (h *KanbanHandler) MoveCard(c *gin.Context) {
	var req MoveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.cardUsecase.MoveCard(c.Request.Context(), c.Param("id"), req.ColumnID, req.Order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// UpdateCardOrder moves a card within its column
// PATCH /api/cards/:id/order
func (h *KanbanHandler) UpdateCardOrder(c *gin.Context) {
	var req CardOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.cardUsecase.UpdateCardOrder(c.Request.Context(), c.Param("id"), *req.Order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}
