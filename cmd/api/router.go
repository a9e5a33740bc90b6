package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kanladin-backend/internal/kanban/delivery"
)

func SetupRoutes(r *gin.Engine, kanbanHandler *delivery.KanbanHandler, graphqlHandler *delivery.GraphQLHandler) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello World from Kanladin API"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// GraphQL
		api.POST("/graphql", graphqlHandler.Serve)
		api.GET("/graphql", graphqlHandler.Serve)

		boards := api.Group("/boards")
		{
			boards.GET("", kanbanHandler.GetBoards)
			boards.POST("", kanbanHandler.CreateBoard)
			boards.GET("/:id", kanbanHandler.GetBoard)
			boards.PUT("/:id", kanbanHandler.UpdateBoard)
			boards.DELETE("/:id", kanbanHandler.DeleteBoard)
			boards.GET("/:id/columns", kanbanHandler.GetBoardColumns)
			boards.PUT("/:id/columns/order", kanbanHandler.UpdateColumnOrder)
		}

		columns := api.Group("/columns")
		{
			columns.GET("", kanbanHandler.GetColumns)
			columns.POST("", kanbanHandler.CreateColumn)
			columns.GET("/:id", kanbanHandler.GetColumn)
			columns.PUT("/:id", kanbanHandler.UpdateColumn)
			columns.DELETE("/:id", kanbanHandler.DeleteColumn)
			columns.GET("/:id/cards", kanbanHandler.GetColumnCards)
			columns.GET("/:id/consistency", kanbanHandler.CheckColumnOrder)
			columns.POST("/:id/repair", kanbanHandler.RepairColumnOrder)
		}

		cards := api.Group("/cards")
		{
			cards.GET("", kanbanHandler.GetCards)
			cards.POST("", kanbanHandler.CreateCard)
			cards.GET("/:id", kanbanHandler.GetCard)
			cards.PUT("/:id", kanbanHandler.UpdateCard)
			cards.DELETE("/:id", kanbanHandler.DeleteCard)
			cards.PATCH("/:id/move", kanbanHandler.MoveCard) // Ordering engine
			cards.PATCH("/:id/order", kanbanHandler.UpdateCardOrder)
		}
	}
}
