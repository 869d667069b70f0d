package handlers

import (
	"net/http"

	"insurance-service/internal/models"
	"insurance-service/internal/services"
	"insurance-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type LedgerHandler struct {
	ledgerService *services.LedgerService
}

func NewLedgerHandler(ledgerService *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

func (lh *LedgerHandler) Register(app *fiber.App) {
	protectedGr := app.Group("insurance/protected/api/v1")

	ledgerGroup := protectedGr.Group("/ledger")
	ledgerGroup.Get("/balance", lh.GetBalance)           // GET  /ledger/balance - Current balance
	ledgerGroup.Get("/transactions", lh.GetTransactions) // GET  /ledger/transactions - Transaction history
	ledgerGroup.Post("/topup", lh.TopUp)                 // POST /ledger/topup - Credit the account
}

func (lh *LedgerHandler) GetBalance(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	balance, err := lh.ledgerService.GetBalance(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{
		"user_id": userID,
		"balance": balance,
	}))
}

func (lh *LedgerHandler) GetTransactions(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	transactions, err := lh.ledgerService.GetHistory(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(transactions, len(transactions)))
}

func (lh *LedgerHandler) TopUp(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.CreditAccountRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	txn, err := lh.ledgerService.Credit(c.Context(), userID, req.Amount, models.ReasonAccountTopUp)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(txn))
}
