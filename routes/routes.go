package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/selamgames/bingo-engine/controllers"
)

func SetupRoutes(r *gin.Engine, api *controllers.API) {
	g := r.Group("/api")

	// ----------------------
	// User / wallet routes
	// ----------------------
	g.POST("/users", api.RegisterUser)
	g.GET("/users/:player_id", api.GetUser)
	g.GET("/users/:player_id/boards", api.GetUserBoards)
	g.POST("/deposit", api.Deposit)
	g.POST("/withdraw", api.Withdraw)

	// ----------------------
	// Room routes
	// ----------------------
	g.GET("/rooms", api.ListRooms)
	g.GET("/rooms/:id", api.GetRoom)
	g.GET("/rooms/:id/result", api.GetRoomResult)
	g.POST("/rooms/:id/join", api.JoinRoom)

	// ----------------------
	// Game archive routes
	// ----------------------
	g.GET("/games/:game_id", api.GetGameResult)
}
