package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selamgames/bingo-engine/engine"
	"github.com/selamgames/bingo-engine/models"
	"github.com/selamgames/bingo-engine/services"
	"gorm.io/gorm"
)

// RegisterUser creates a wallet-holding player account.
func (a *API) RegisterUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.User
	if err := a.DB.Where("player_id = ?", user.PlayerID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	if err := a.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser fetches a user by player id.
func (a *API) GetUser(c *gin.Context) {
	var user models.User
	if err := a.DB.Where("player_id = ?", c.Param("player_id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserBoards lists a player's recent boards across games.
func (a *API) GetUserBoards(c *gin.Context) {
	boards, err := a.Store.BoardsByPlayer(c.Param("player_id"), 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch boards"})
		return
	}
	c.JSON(http.StatusOK, boards)
}

type walletRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}

// Deposit adds funds to a wallet.
func (a *API) Deposit(c *gin.Context) {
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.Wallet.Deposit(req.PlayerID, req.Amount); err != nil {
		if errors.Is(err, services.ErrUnknownPlayer) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deposit"})
		return
	}
	balance, _ := a.Wallet.Balance(req.PlayerID)
	c.JSON(http.StatusCreated, gin.H{"playerId": req.PlayerID, "balance": balance})
}

// Withdraw takes funds out of a wallet, rejecting overdrafts.
func (a *API) Withdraw(c *gin.Context) {
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.Wallet.Withdraw(req.PlayerID, req.Amount); err != nil {
		if errors.Is(err, services.ErrUnknownPlayer) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if errors.Is(err, engine.ErrInsufficientFunds) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw"})
		return
	}
	balance, _ := a.Wallet.Balance(req.PlayerID)
	c.JSON(http.StatusCreated, gin.H{"playerId": req.PlayerID, "balance": balance})
}
