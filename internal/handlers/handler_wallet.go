package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/apperrors"
	portssvc "github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/services"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/dto"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/middleware"
)

// walletHandler handles HTTP requests for the wallet: requesting movements,
// listing history and reading the balance.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
	currency      string
}

func newWalletHandler(ws portssvc.WalletSvcFacade, currency string) *walletHandler {
	return &walletHandler{walletService: ws, currency: currency}
}

// RegisterWalletRoutes registers routes related to the wallet.
func RegisterWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade, currency string) {
	h := newWalletHandler(walletService, currency)

	wallet := rg.Group("/wallet")
	{
		wallet.POST("/deposits", h.requestDeposit)
		wallet.POST("/withdrawals", h.requestWithdrawal)
		wallet.GET("/transactions", h.listTransactions)
		wallet.GET("/balance", h.getBalance)
	}
}

// requestDeposit godoc
// @Summary Request a wallet deposit
// @Description Creates a pending deposit and schedules its settlement; the funds leg completes asynchronously
// @Tags wallet
// @Accept  json
// @Produce  json
// @Param   deposit body dto.DepositRequest true "Deposit details"
// @Success 202 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create deposit"
// @Security BearerAuth
// @Router /wallet/deposits [post]
func (h *walletHandler) requestDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RequestDeposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.walletService.RequestDeposit(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deposit"})
		}
		return
	}

	logger.Info("Deposit requested", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusAccepted, dto.ToTransactionResponse(txn))
}

// requestWithdrawal godoc
// @Summary Request a wallet withdrawal
// @Description Creates a pending withdrawal to a mobile money account and schedules its settlement
// @Tags wallet
// @Accept  json
// @Produce  json
// @Param   withdrawal body dto.WithdrawalRequest true "Withdrawal details"
// @Success 202 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create withdrawal"
// @Security BearerAuth
// @Router /wallet/withdrawals [post]
func (h *walletHandler) requestWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RequestWithdrawal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.walletService.RequestWithdrawal(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating withdrawal", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create withdrawal", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create withdrawal"})
		}
		return
	}

	logger.Info("Withdrawal requested", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusAccepted, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List wallet transactions
// @Description Returns the authenticated user's transactions, newest first
// @Tags wallet
// @Produce  json
// @Param   limit query int false "Maximum rows to return"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /wallet/transactions [get]
func (h *walletHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	txns, err := h.walletService.ListTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Transactions: dto.ToTransactionResponses(txns)})
}

// getBalance godoc
// @Summary Get wallet balance
// @Description Returns the authenticated user's balance, derived from the ledger on every read
// @Tags wallet
// @Produce  json
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute balance"
// @Security BearerAuth
// @Router /wallet/balance [get]
func (h *walletHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balance, err := h.walletService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to compute balance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{Balance: balance, Currency: h.currency})
}

// bindingErrorMessage turns validator errors into a stable, readable message
// instead of leaking struct internals.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed on the %s rule", fe.Field(), fe.Tag())
	}
	return "Invalid request format: " + err.Error()
}
