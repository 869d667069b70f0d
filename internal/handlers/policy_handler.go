package handlers

import (
	"log/slog"
	"net/http"

	"insurance-service/internal/models"
	"insurance-service/internal/services"
	"insurance-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type PolicyHandler struct {
	catalogService *services.PolicyCatalogService
}

func NewPolicyHandler(catalogService *services.PolicyCatalogService) *PolicyHandler {
	return &PolicyHandler{catalogService: catalogService}
}

func (ph *PolicyHandler) Register(app *fiber.App) {
	protectedGr := app.Group("insurance/protected/api/v1")

	policyGroup := protectedGr.Group("/policies")
	policyGroup.Post("/", ph.CreatePolicy)                // POST  /policies - Create a policy offering
	policyGroup.Get("/", ph.ListMyPolicies)               // GET   /policies - List the agent's policies
	policyGroup.Get("/:id", ph.GetPolicy)                 // GET   /policies/{id} - Policy detail
	policyGroup.Patch("/:id/status", ph.UpdateStatus)     // PATCH /policies/{id}/status - Activate/deactivate/discontinue
	policyGroup.Delete("/:id", ph.DeletePolicy)           // DELETE /policies/{id} - Remove an unused policy
}

func (ph *PolicyHandler) CreatePolicy(c fiber.Ctx) error {
	agentID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.CreatePolicyRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	policy, err := ph.catalogService.CreatePolicy(c.Context(), agentID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(policy))
}

func (ph *PolicyHandler) ListMyPolicies(c fiber.Ctx) error {
	agentID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	policies, err := ph.catalogService.ListPoliciesByAgent(c.Context(), agentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(policies, len(policies)))
}

func (ph *PolicyHandler) GetPolicy(c fiber.Ctx) error {
	policyID, err := utils.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	policy, err := ph.catalogService.GetPolicy(c.Context(), policyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(policy))
}

func (ph *PolicyHandler) UpdateStatus(c fiber.Ctx) error {
	agentID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	policyID, err := utils.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	var req struct {
		Status models.PolicyStatus `json:"status"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}
	if !models.IsValidPolicyStatus(req.Status) {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "invalid policy status"))
	}

	if err := ph.catalogService.UpdatePolicyStatus(c.Context(), policyID, agentID, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"policy_id": policyID, "status": req.Status}))
}

func (ph *PolicyHandler) DeletePolicy(c fiber.Ctx) error {
	agentID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	policyID, err := utils.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	if err := ph.catalogService.DeletePolicy(c.Context(), policyID, agentID); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"policy_id": policyID, "deleted": true}))
}
