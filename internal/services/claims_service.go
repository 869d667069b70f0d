package services

import (
	"context"
	"errors"
	"time"

	"insurance-service/internal/apperrors"
	"insurance-service/internal/models"
	"insurance-service/internal/store"

	"github.com/google/uuid"
)

// ClaimsService validates complaint-to-claim eligibility and drives
// settlement. Settlement is a one-shot transition: the eligibility re-check,
// the ledger transfer and the status flip run in one store transaction
// under a per-claim lock, so a retried settle is rejected rather than
// re-executed.
type ClaimsService struct {
	uow       store.UnitOfWork
	publisher EventPublisher
	locks     *keyedMutex
	now       func() int64
}

func NewClaimsService(uow store.UnitOfWork, publisher EventPublisher) *ClaimsService {
	return &ClaimsService{
		uow:       uow,
		publisher: publisher,
		locks:     newKeyedMutex(),
		now:       func() int64 { return time.Now().Unix() },
	}
}

// WithClock overrides the service clock for deterministic tests.
func (s *ClaimsService) WithClock(now func() int64) *ClaimsService {
	s.now = now
	return s
}

// ============================================================================
// COMPLAINTS
// ============================================================================

// FileComplaint records an order issue report. The order facts (product,
// price, quantity, dispatch date) are a read-only snapshot supplied by the
// order-management subsystem.
func (s *ClaimsService) FileComplaint(ctx context.Context, req models.FileComplaintRequest) (*models.Complaint, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	complaintDate := req.ComplaintDate
	if complaintDate == 0 {
		complaintDate = s.now()
	}

	complaint := &models.Complaint{
		OrderRef:      req.OrderRef,
		SellerID:      req.SellerID,
		BuyerID:       req.BuyerID,
		ProductName:   req.ProductName,
		Price:         req.Price,
		Quantity:      req.Quantity,
		DispatchDate:  req.DispatchDate,
		ComplaintDate: complaintDate,
		Reason:        req.Reason,
		Description:   req.Description,
		Status:        models.ComplaintPending,
	}

	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		return r.Complaints.Create(ctx, complaint)
	})
	if err != nil {
		return nil, err
	}
	return complaint, nil
}

func (s *ClaimsService) GetComplaint(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint *models.Complaint
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		complaint, err = r.Complaints.GetByID(ctx, id)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("complaint")
	}
	if err != nil {
		return nil, err
	}
	return complaint, nil
}

func (s *ClaimsService) ListComplaintsBySeller(ctx context.Context, sellerID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		complaints, err = r.Complaints.ListBySeller(ctx, sellerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

func (s *ClaimsService) ListComplaintsByBuyer(ctx context.Context, buyerID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		complaints, err = r.Complaints.ListByBuyer(ctx, buyerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

// CancelComplaint withdraws a pending complaint. Only the complaint's
// seller or buyer may cancel, only while it is still pending, and no ledger
// movement occurs.
func (s *ClaimsService) CancelComplaint(ctx context.Context, complaintID uuid.UUID, actorID, reason string) error {
	unlock := s.locks.Lock(complaintID.String())
	defer unlock()

	now := s.now()
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		complaint, err := r.Complaints.GetByID(ctx, complaintID)
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("complaint")
		}
		if err != nil {
			return err
		}

		if actorID != complaint.SellerID && actorID != complaint.BuyerID {
			return apperrors.Forbidden("complaint does not belong to this user")
		}
		if complaint.Status != models.ComplaintPending {
			return apperrors.InvalidStatus("complaint is %s and can no longer be cancelled", complaint.Status)
		}

		complaint.Status = models.ComplaintRejected
		complaint.CancellationReason = &reason
		complaint.CancellationDate = &now
		return r.Complaints.Update(ctx, complaint)
	})
	return err
}

// ============================================================================
// CLAIMS
// ============================================================================

// CheckComplaintEligibility previews the eligibility outcome for a pending
// complaint without creating anything.
func (s *ClaimsService) CheckComplaintEligibility(ctx context.Context, complaintID uuid.UUID) (*models.EligibilityResult, error) {
	now := s.now()
	var result models.EligibilityResult
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		complaint, err := r.Complaints.GetByID(ctx, complaintID)
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("complaint")
		}
		if err != nil {
			return err
		}

		sub, err := r.Subscriptions.GetActiveBySubscriber(ctx, complaint.SellerID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		result = CheckEligibility(complaint, sub, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FileClaim turns an eligible pending complaint into a pending claim. This
// is the only path that creates claims; the eligibility check and both
// status writes run in one transaction.
func (s *ClaimsService) FileClaim(ctx context.Context, complaintID uuid.UUID) (*models.Claim, error) {
	unlock := s.locks.Lock(complaintID.String())
	defer unlock()

	now := s.now()
	var claim *models.Claim
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		complaint, err := r.Complaints.GetByID(ctx, complaintID)
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("complaint")
		}
		if err != nil {
			return err
		}
		if complaint.Status != models.ComplaintPending {
			return apperrors.InvalidStatus("complaint is %s; a claim can only be filed from a pending complaint", complaint.Status)
		}

		sub, err := r.Subscriptions.GetActiveBySubscriber(ctx, complaint.SellerID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		eligibility := CheckEligibility(complaint, sub, now)
		if !eligibility.Eligible {
			return apperrors.NotEligible(eligibility.Reason)
		}

		claim = &models.Claim{
			ComplaintID:    complaint.ID,
			SubscriptionID: sub.ID,
			PolicyID:       sub.PolicyID,
			AgentID:        sub.AgentID,
			SellerID:       complaint.SellerID,
			BuyerID:        complaint.BuyerID,
			ClaimAmount:    complaint.OrderAmount(),
			CoverageAmount: sub.CoverageAmount,
			Status:         models.ClaimPending,
		}
		if err := r.Claims.Create(ctx, claim); err != nil {
			return err
		}

		complaint.Status = models.ComplaintClaimFiled
		return r.Complaints.Update(ctx, complaint)
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, EventClaimFiled, claim)
	}
	return claim, nil
}

func (s *ClaimsService) GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim *models.Claim
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		claim, err = r.Claims.GetByID(ctx, id)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("claim")
	}
	if err != nil {
		return nil, err
	}
	return claim, nil
}

func (s *ClaimsService) ListClaimsByAgent(ctx context.Context, agentID string) ([]models.Claim, error) {
	var claims []models.Claim
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		claims, err = r.Claims.ListByAgent(ctx, agentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ApproveClaim marks a pending claim approved. Approval is an optional
// review step; settlement accepts pending and approved claims alike.
func (s *ClaimsService) ApproveClaim(ctx context.Context, claimID uuid.UUID, agentID, notes string) (*models.Claim, error) {
	return s.review(ctx, claimID, agentID, notes, models.ClaimApproved)
}

// RejectClaim terminally rejects a claim; no money moves and settlement is
// blocked from then on.
func (s *ClaimsService) RejectClaim(ctx context.Context, claimID uuid.UUID, agentID, notes string) (*models.Claim, error) {
	return s.review(ctx, claimID, agentID, notes, models.ClaimRejected)
}

func (s *ClaimsService) review(ctx context.Context, claimID uuid.UUID, agentID, notes string, target models.ClaimStatus) (*models.Claim, error) {
	unlock := s.locks.Lock(claimID.String())
	defer unlock()

	now := s.now()
	var claim *models.Claim
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		claim, err = r.Claims.GetByID(ctx, claimID)
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("claim")
		}
		if err != nil {
			return err
		}
		if claim.AgentID != agentID {
			return apperrors.Forbidden("claim does not belong to this agent")
		}
		if claim.Status.IsTerminal() {
			return apperrors.AlreadySettled(string(claim.Status))
		}
		if target == models.ClaimApproved && claim.Status != models.ClaimPending {
			return apperrors.InvalidStatus("claim is %s and cannot be approved", claim.Status)
		}

		claim.Status = target
		claim.ReviewedBy = &agentID
		claim.ReviewedAt = &now
		if notes != "" {
			claim.AgentNotes = &notes
		}
		if target == models.ClaimRejected {
			complaint, err := r.Complaints.GetByID(ctx, claim.ComplaintID)
			if err != nil {
				return err
			}
			complaint.Status = models.ComplaintRejected
			if err := r.Complaints.Update(ctx, complaint); err != nil {
				return err
			}
		}
		return r.Claims.Update(ctx, claim)
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// SettleClaim pays out or refunds an open claim: the agent's account is
// debited, the buyer's credited, and the claim (and its complaint) move to
// their terminal state — all in one transaction. A claim already in a
// terminal state is rejected with ALREADY_SETTLED; the transfer never runs
// twice.
func (s *ClaimsService) SettleClaim(ctx context.Context, claimID uuid.UUID, agentID string, action models.SettleAction) (*models.Transaction, error) {
	unlock := s.locks.Lock(claimID.String())
	defer unlock()

	if action != models.SettlePay && action != models.SettleRefund {
		return nil, apperrors.Validation("invalid settle action %q", action)
	}

	now := s.now()
	var payout *models.Transaction
	var claim *models.Claim
	err := s.uow.WithinTx(ctx, func(r store.Repos) error {
		var err error
		claim, err = r.Claims.GetByID(ctx, claimID)
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("claim")
		}
		if err != nil {
			return err
		}
		if claim.AgentID != agentID {
			return apperrors.Forbidden("claim does not belong to this agent")
		}
		if claim.Status.IsTerminal() {
			return apperrors.AlreadySettled(string(claim.Status))
		}

		reason := models.ReasonClaimPayout
		claimStatus := models.ClaimPaid
		complaintStatus := models.ComplaintResolved
		if action == models.SettleRefund {
			reason = models.ReasonComplaintRefund
			claimStatus = models.ClaimRefunded
			complaintStatus = models.ComplaintRefunded
		}

		debitTxn, _, err := applyTransfer(ctx, r, claim.AgentID, claim.BuyerID, claim.ClaimAmount, reason)
		if err != nil {
			return err
		}
		payout = debitTxn

		claim.Status = claimStatus
		claim.SettledAt = &now
		if err := r.Claims.Update(ctx, claim); err != nil {
			return err
		}

		complaint, err := r.Complaints.GetByID(ctx, claim.ComplaintID)
		if err != nil {
			return err
		}
		complaint.Status = complaintStatus
		return r.Complaints.Update(ctx, complaint)
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, EventClaimSettled, claim)
	}
	return payout, nil
}
