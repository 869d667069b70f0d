package handlers

import (
	"log/slog"
	"net/http"

	"insurance-service/internal/models"
	"insurance-service/internal/services"
	"insurance-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type ClaimHandler struct {
	claimsService *services.ClaimsService
}

func NewClaimHandler(claimsService *services.ClaimsService) *ClaimHandler {
	return &ClaimHandler{claimsService: claimsService}
}

func (ch *ClaimHandler) Register(app *fiber.App) {
	protectedGr := app.Group("insurance/protected/api/v1")

	complaintGroup := protectedGr.Group("/complaints")
	complaintGroup.Post("/", ch.FileComplaint)                     // POST /complaints - File an order complaint
	complaintGroup.Get("/seller", ch.ListSellerComplaints)         // GET  /complaints/seller - Complaints against me
	complaintGroup.Get("/buyer", ch.ListBuyerComplaints)           // GET  /complaints/buyer - Complaints I filed
	complaintGroup.Get("/:id", ch.GetComplaint)                    // GET  /complaints/{id} - Complaint detail
	complaintGroup.Get("/:id/eligibility", ch.CheckEligibility)    // GET  /complaints/{id}/eligibility - Preview claim eligibility
	complaintGroup.Post("/:id/claim", ch.FileClaim)                // POST /complaints/{id}/claim - Escalate to a claim
	complaintGroup.Put("/:id/cancel", ch.CancelComplaint)          // PUT  /complaints/{id}/cancel - Withdraw a pending complaint

	claimGroup := protectedGr.Group("/claims")
	claimGroup.Get("/", ch.ListAgentClaims)          // GET  /claims - Claims against the agent's policies
	claimGroup.Get("/:id", ch.GetClaim)              // GET  /claims/{id} - Claim detail
	claimGroup.Put("/:id/approve", ch.ApproveClaim)  // PUT  /claims/{id}/approve - Mark reviewed and approved
	claimGroup.Put("/:id/reject", ch.RejectClaim)    // PUT  /claims/{id}/reject - Terminally reject
	claimGroup.Post("/:id/settle", ch.SettleClaim)   // POST /claims/{id}/settle - Pay out or refund
}

// ============================================================================
// COMPLAINTS
// ============================================================================

func (ch *ClaimHandler) FileComplaint(c fiber.Ctx) error {
	buyerID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.FileComplaintRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}
	req.BuyerID = buyerID

	complaint, err := ch.claimsService.FileComplaint(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(complaint))
}

func (ch *ClaimHandler) GetComplaint(c fiber.Ctx) error {
	complaintID, err := utils.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	complaint, err := ch.claimsService.GetComplaint(c.Context(), complaintID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(complaint))
}

func (ch *ClaimHandler) ListSellerComplaints(c fiber.Ctx) error {
	sellerID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	complaints, err := ch.claimsService.ListComplaintsBySeller(c.Context(), sellerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(complaints, len(complaints)))
}

func (ch *ClaimHandler) ListBuyerComplaints(c fiber.Ctx) error {
	buyerID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	complaints, err := ch.claimsService.ListComplaintsByBuyer(c.Context(), buyerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(complaints, len(complaints)))
}

func (ch *ClaimHandler) CheckEligibility(c fiber.Ctx) error {
	complaintID, err := utils.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	result, err := ch.claimsService.CheckComplaintEligibility(c.Context(), complaintID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(result))
}

func (ch *ClaimHandler) CancelComplaint(c fiber.Ctx) error {
	actorID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	complaintID, err := utils.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	var req models.CancelComplaintRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	if err := ch.claimsService.CancelComplaint(c.Context(), complaintID, actorID, req.Reason); err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"complaint_id": complaintID, "cancelled": true}))
}

// ============================================================================
// CLAIMS
// ============================================================================

func (ch *ClaimHandler) FileClaim(c fiber.Ctx) error {
	complaintID, err := utils.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	claim, err := ch.claimsService.FileClaim(c.Context(), complaintID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(claim))
}

func (ch *ClaimHandler) GetClaim(c fiber.Ctx) error {
	claimID, err := utils.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	claim, err := ch.claimsService.GetClaim(c.Context(), claimID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(claim))
}

func (ch *ClaimHandler) ListAgentClaims(c fiber.Ctx) error {
	agentID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	claims, err := ch.claimsService.ListClaimsByAgent(c.Context(), agentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateListResponse(claims, len(claims)))
}

func (ch *ClaimHandler) ApproveClaim(c fiber.Ctx) error {
	return ch.reviewClaim(c, true)
}

func (ch *ClaimHandler) RejectClaim(c fiber.Ctx) error {
	return ch.reviewClaim(c, false)
}

func (ch *ClaimHandler) reviewClaim(c fiber.Ctx, approve bool) error {
	agentID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	claimID, err := utils.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	var req models.ReviewClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	var claim *models.Claim
	if approve {
		claim, err = ch.claimsService.ApproveClaim(c.Context(), claimID, agentID, req.Notes)
	} else {
		claim, err = ch.claimsService.RejectClaim(c.Context(), claimID, agentID, req.Notes)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(claim))
}

func (ch *ClaimHandler) SettleClaim(c fiber.Ctx) error {
	agentID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	claimID, err := utils.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	var req models.SettleClaimRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", err.Error()))
	}

	payout, err := ch.claimsService.SettleClaim(c.Context(), claimID, agentID, req.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(payout))
}
