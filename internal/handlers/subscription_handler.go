package handlers

import (
	"log/slog"
	"net/http"

	"insurance-service/internal/models"
	"insurance-service/internal/services"
	"insurance-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

func (sh *SubscriptionHandler) Register(app *fiber.App) {
	protectedGr := app.Group("insurance/protected/api/v1")

	subGroup := protectedGr.Group("/subscriptions")
	subGroup.Post("/", sh.Subscribe)              // POST   /subscriptions - Subscribe to a policy
	subGroup.Get("/active", sh.GetActive)         // GET    /subscriptions/active - Current coverage
	subGroup.Delete("/active", sh.Cancel)         // DELETE /subscriptions/active - Cancel with prorated refund
}

func (sh *SubscriptionHandler) Subscribe(c fiber.Ctx) error {
	subscriberID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.SubscribeRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	sub, err := sh.subscriptionService.Subscribe(c.Context(), subscriberID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(sub))
}

func (sh *SubscriptionHandler) GetActive(c fiber.Ctx) error {
	subscriberID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	sub, err := sh.subscriptionService.GetActiveSubscription(c.Context(), subscriberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(sub))
}

func (sh *SubscriptionHandler) Cancel(c fiber.Ctx) error {
	subscriberID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	refund, err := sh.subscriptionService.Cancel(c.Context(), subscriberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(refund))
}
