package service

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	stripe "github.com/stripe/stripe-go/v78"
	stripeclient "github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/model"
	"github.com/agendahof/agendahof-server/internal/model/dto"
	"github.com/agendahof/agendahof-server/internal/repository"
)

// BillingService fronts the hosted payment collaborator. It creates checkout
// sessions and turns webhook events into subscription rows; entitlement only
// ever reads those rows.
type BillingService struct {
	subRepo  *repository.SubscriptionRepository
	userRepo *repository.UserRepository
	cfg      *config.Config
	sc       *stripeclient.API
}

func NewBillingService(
	subRepo *repository.SubscriptionRepository,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *BillingService {
	s := &BillingService{
		subRepo:  subRepo,
		userRepo: userRepo,
		cfg:      cfg,
	}
	if cfg.Billing.StripeSecretKey != "" {
		s.sc = &stripeclient.API{}
		s.sc.Init(cfg.Billing.StripeSecretKey, nil)
	}
	return s
}

func (s *BillingService) ListPlans() []dto.PlanInfo {
	plans := make([]dto.PlanInfo, 0, len(s.cfg.Billing.Plans))
	for _, p := range s.cfg.Billing.Plans {
		plans = append(plans, dto.PlanInfo{
			ID:       p.ID,
			Name:     p.Name,
			Tier:     p.Tier,
			Amount:   p.Amount,
			Currency: p.Currency,
		})
	}
	return plans
}

func (s *BillingService) findPlan(planID string) *config.PlanConfig {
	for i := range s.cfg.Billing.Plans {
		if s.cfg.Billing.Plans[i].ID == planID {
			return &s.cfg.Billing.Plans[i]
		}
	}
	return nil
}

// CreateCheckout opens a hosted checkout session for the plan. The user ID
// rides along as the client reference so the webhook can attribute the
// resulting subscription.
func (s *BillingService) CreateCheckout(userID int64, planID string) (*dto.CheckoutResponse, error) {
	plan := s.findPlan(planID)
	if plan == nil {
		return nil, ErrUnknownPlan
	}
	if s.sc == nil {
		return nil, ErrBillingUnavailable
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.cfg.Billing.CheckoutSuccessURL),
		CancelURL:         stripe.String(s.cfg.Billing.CheckoutCancelURL),
		ClientReferenceID: stripe.String(strconv.FormatInt(userID, 10)),
	}
	params.AddMetadata("plan_id", plan.ID)
	params.AddMetadata("plan_tier", plan.Tier)

	session, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &dto.CheckoutResponse{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

// HandleWebhook verifies the signature and applies the event. Unknown event
// types are acknowledged and ignored.
func (s *BillingService) HandleWebhook(payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.cfg.Billing.StripeWebhookKey)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return s.applyCheckoutCompleted(&session)

	case "invoice.paid":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("failed to parse invoice: %w", err)
		}
		return s.applyInvoicePaid(&invoice)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		return s.applySubscriptionDeleted(&sub)

	default:
		log.Printf("Billing: ignoring webhook event %s", event.Type)
		return nil
	}
}

// applyCheckoutCompleted records the fresh billing relationship. Any previous
// active row is superseded first; rows are never rewritten in place.
func (s *BillingService) applyCheckoutCompleted(session *stripe.CheckoutSession) error {
	userID, err := strconv.ParseInt(session.ClientReferenceID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad client reference %q: %w", session.ClientReferenceID, err)
	}

	plan := s.findPlan(session.Metadata["plan_id"])
	if plan == nil {
		return fmt.Errorf("checkout for unknown plan %q", session.Metadata["plan_id"])
	}

	if err := s.subRepo.SupersedeActive(userID); err != nil {
		return err
	}

	next := time.Now().AddDate(0, 1, 0)
	sub := &model.Subscription{
		UserID:          userID,
		PlanTier:        plan.Tier,
		PlanAmount:      plan.Amount,
		NextBillingDate: &next,
		Status:          model.SubscriptionActive,
		StripeSessionID: session.ID,
	}
	if session.Subscription != nil {
		sub.StripeSubID = session.Subscription.ID
	}

	return s.subRepo.Create(sub)
}

// applyInvoicePaid advances the billing horizon for a renewal by superseding
// the matched row with a fresh one.
func (s *BillingService) applyInvoicePaid(invoice *stripe.Invoice) error {
	if invoice.Subscription == nil {
		return nil
	}

	current, err := s.subRepo.GetByStripeSubID(invoice.Subscription.ID)
	if err != nil {
		if isNotFound(err) {
			log.Printf("Billing: invoice for unknown subscription %s", invoice.Subscription.ID)
			return nil
		}
		return err
	}

	if err := s.subRepo.SupersedeActive(current.UserID); err != nil {
		return err
	}

	next := time.Now().AddDate(0, 1, 0)
	renewed := &model.Subscription{
		UserID:             current.UserID,
		PlanTier:           current.PlanTier,
		PlanAmount:         current.PlanAmount,
		DiscountPercentage: current.DiscountPercentage,
		NextBillingDate:    &next,
		Status:             model.SubscriptionActive,
		StripeSubID:        current.StripeSubID,
	}
	return s.subRepo.Create(renewed)
}

func (s *BillingService) applySubscriptionDeleted(sub *stripe.Subscription) error {
	current, err := s.subRepo.GetByStripeSubID(sub.ID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	return s.subRepo.UpdateStatus(current.ID, model.SubscriptionCancelled)
}
