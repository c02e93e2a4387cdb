// Package quotes prices, saves and approves quotes.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Simplici0/printdesk/internal/events"
	"github.com/Simplici0/printdesk/internal/input"
	"github.com/Simplici0/printdesk/internal/models"
	"github.com/Simplici0/printdesk/internal/pricing"
	"github.com/Simplici0/printdesk/internal/store"
)

var (
	ErrUnknownFilament = errors.New("quote references unknown filament")
	ErrQuoteFrozen     = errors.New("approved quotes cannot be changed")
	ErrAlreadyApproved = errors.New("quote already approved")
	ErrOrderCompleted  = errors.New("production order already completed")
	// ErrSideEffects marks an approval that succeeded while stock, ledger,
	// production or event updates did not.
	ErrSideEffects = errors.New("quote approved with side effect failures")
)

// Repository is the persistence the service needs. *store.Store implements it.
type Repository interface {
	Settings(ctx context.Context) (pricing.CostConfiguration, error)
	Filaments(ctx context.Context) ([]models.Filament, error)
	Fees(ctx context.Context) ([]pricing.MarketplaceFeeRule, error)
	Client(ctx context.Context, id string) (models.Client, error)
	Quote(ctx context.Context, id string) (models.Quote, error)
	UpsertQuote(ctx context.Context, q *models.Quote) error
	DeleteQuote(ctx context.Context, id string) error
	MarkQuoteApproved(ctx context.Context, id string, at time.Time) error
	AdjustFilamentWeight(ctx context.Context, id string, deltaGrams float64) error
	PostLedgerEntry(ctx context.Context, e *models.LedgerEntry) error
	CreateProductionOrder(ctx context.Context, o *models.ProductionOrder) error
	CompleteProductionOrder(ctx context.Context, id string, actualGrams float64, at time.Time) error
}

// Draft is the editable part of a quote.
type Draft struct {
	ID                  string               `json:"id,omitempty"`
	ClientID            string               `json:"clientId"`
	Title               string               `json:"title"`
	Items               []pricing.PrintJob   `json:"items"`
	ProfitMarginPercent float64              `json:"profitMarginPercent"`
	Channel             pricing.SalesChannel `json:"channel"`
	Status              models.QuoteStatus   `json:"status,omitempty"`
}

type Service struct {
	repo   Repository
	events events.Publisher
	log    *zap.Logger
	strict bool
	now    func() time.Time
}

type Option func(*Service)

// WithStrictFilaments makes pricing fail on unknown filament references
// instead of costing them at zero.
func WithStrictFilaments(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

func NewService(repo Repository, publisher events.Publisher, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		events: publisher,
		log:    log.Named("quotes"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type pricingInputs struct {
	cfg       pricing.CostConfiguration
	filaments []pricing.Filament
	fees      pricing.FeeTable
}

func (s *Service) loadPricingInputs(ctx context.Context) (pricingInputs, error) {
	cfg, err := s.repo.Settings(ctx)
	if errors.Is(err, store.ErrNotFound) {
		cfg = models.DefaultSettings()
	} else if err != nil {
		return pricingInputs{}, fmt.Errorf("load settings: %w", err)
	}

	filaments, err := s.repo.Filaments(ctx)
	if err != nil {
		return pricingInputs{}, fmt.Errorf("load filaments: %w", err)
	}

	fees, err := s.repo.Fees(ctx)
	if err != nil {
		return pricingInputs{}, fmt.Errorf("load marketplace fees: %w", err)
	}

	return pricingInputs{
		cfg:       cfg,
		filaments: models.PricingFilaments(filaments),
		fees:      pricing.NewFeeTable(fees),
	}, nil
}

// Calculate prices a draft against the current settings, stock and fees
// without saving anything.
func (s *Service) Calculate(ctx context.Context, d Draft) (pricing.Totals, error) {
	if err := input.ValidateItems(d.Items); err != nil {
		return pricing.Totals{}, err
	}

	in, err := s.loadPricingInputs(ctx)
	if err != nil {
		return pricing.Totals{}, err
	}

	if unknown := pricing.UnknownFilamentIDs(d.Items, in.filaments); len(unknown) > 0 {
		s.log.Warn("quote references unknown filaments",
			zap.String("quote_id", d.ID),
			zap.Strings("filament_ids", unknown),
		)
		if s.strict {
			return pricing.Totals{}, fmt.Errorf("%w: %s", ErrUnknownFilament, strings.Join(unknown, ", "))
		}
	}

	return pricing.QuoteTotals(d.Items, in.filaments, in.cfg, d.ProfitMarginPercent, channelOrDefault(d.Channel), in.fees), nil
}

func channelOrDefault(ch pricing.SalesChannel) pricing.SalesChannel {
	if ch == "" {
		return pricing.ChannelDirect
	}
	return ch
}

// Save creates or updates a quote. The financial fields are recomputed on
// every save. Saving with status approved runs Approve afterwards.
func (s *Service) Save(ctx context.Context, d Draft) (models.Quote, error) {
	q := models.Quote{Status: models.QuoteDraft}
	if d.ID != "" {
		existing, err := s.repo.Quote(ctx, d.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return models.Quote{}, err
		}
		if err == nil {
			q = existing
		}
		q.ID = d.ID
	}
	if q.Status == models.QuoteApproved {
		return models.Quote{}, ErrQuoteFrozen
	}

	target := d.Status
	if target == "" {
		target = q.Status
	}
	if err := models.ValidateStatusChange(q.Status, target); err != nil {
		return models.Quote{}, err
	}

	d.ClientID = strings.TrimSpace(d.ClientID)
	if d.ClientID != "" {
		if _, err := s.repo.Client(ctx, d.ClientID); errors.Is(err, store.ErrNotFound) {
			return models.Quote{}, input.Violations{"clientId": "clientId does not match a client"}
		} else if err != nil {
			return models.Quote{}, fmt.Errorf("load client: %w", err)
		}
	}

	totals, err := s.Calculate(ctx, d)
	if err != nil {
		return models.Quote{}, err
	}

	q.ClientID = d.ClientID
	q.Title = strings.TrimSpace(d.Title)
	q.Items = d.Items
	q.ProfitMarginPercent = d.ProfitMarginPercent
	q.Channel = channelOrDefault(d.Channel)
	q.ApplyTotals(totals)
	if target != models.QuoteApproved {
		q.Status = target
	}

	if err := s.repo.UpsertQuote(ctx, &q); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return models.Quote{}, ErrQuoteFrozen
		}
		return models.Quote{}, err
	}

	if target == models.QuoteApproved {
		return s.Approve(ctx, q.ID)
	}
	return q, nil
}

// Delete removes a quote that has not been approved.
func (s *Service) Delete(ctx context.Context, id string) error {
	q, err := s.repo.Quote(ctx, id)
	if err != nil {
		return err
	}
	if q.Status == models.QuoteApproved {
		return ErrQuoteFrozen
	}
	return s.repo.DeleteQuote(ctx, id)
}

// Approve marks a quote approved with its stored financial values, then
// deducts stock, posts the sale, opens a production order and publishes an
// event. Those follow-ups are
// independent; failures are joined under ErrSideEffects and returned with the
// approved quote.
func (s *Service) Approve(ctx context.Context, id string) (models.Quote, error) {
	q, err := s.repo.Quote(ctx, id)
	if err != nil {
		return models.Quote{}, err
	}
	if q.Status == models.QuoteApproved {
		return models.Quote{}, ErrAlreadyApproved
	}
	if err := models.ValidateStatusChange(q.Status, models.QuoteApproved); err != nil {
		return models.Quote{}, err
	}

	at := s.now()
	if err := s.repo.MarkQuoteApproved(ctx, id, at); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return models.Quote{}, ErrAlreadyApproved
		}
		return models.Quote{}, err
	}
	q.Status = models.QuoteApproved
	q.ApprovedAt = &at

	log := s.log.With(zap.String("quote_id", q.ID))
	log.Info("quote approved",
		zap.String("channel", string(q.EffectiveChannel())),
		zap.Float64("final_price", q.FinalPrice),
		zap.Float64("net_value", q.NetValue),
	)

	var errs error
	errs = multierr.Append(errs, s.deductStock(ctx, log, q))
	errs = multierr.Append(errs, s.postSale(ctx, log, q))
	errs = multierr.Append(errs, s.openProductionOrder(ctx, log, q))
	errs = multierr.Append(errs, s.publishApproved(ctx, q))

	if errs != nil {
		log.Warn("approval side effects failed", zap.Error(errs))
		return q, fmt.Errorf("%w: %w", ErrSideEffects, errs)
	}
	return q, nil
}

func (s *Service) deductStock(ctx context.Context, log *zap.Logger, q models.Quote) error {
	var errs error
	for _, item := range q.Items {
		for _, usage := range item.FilamentUsage {
			if usage.GramsUsed <= 0 {
				continue
			}
			err := s.repo.AdjustFilamentWeight(ctx, usage.FilamentID, -usage.GramsUsed)
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("skipping stock deduction for unknown filament", zap.String("filament_id", usage.FilamentID))
				continue
			}
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("deduct filament %s: %w", usage.FilamentID, err))
			}
		}
	}
	return errs
}

func (s *Service) postSale(ctx context.Context, log *zap.Logger, q models.Quote) error {
	entry := models.LedgerEntry{
		QuoteID:     q.ID,
		Kind:        models.LedgerSale,
		Description: q.Title,
		Channel:     string(q.EffectiveChannel()),
		Amount:      q.Revenue(),
		Cost:        q.TotalCost,
		Fees:        q.TaxAmount,
		Profit:      q.Profit(),
		PostedAt:    *q.ApprovedAt,
	}
	if entry.Description == "" {
		entry.Description = "Orçamento " + shortID(q.ID)
	}
	if q.ClientID != "" {
		client, err := s.repo.Client(ctx, q.ClientID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("load client for ledger: %w", err)
		}
		entry.ClientName = client.Name
	}
	for _, item := range q.Items {
		for _, usage := range item.FilamentUsage {
			entry.Items = append(entry.Items, models.LedgerItem{FilamentID: usage.FilamentID, Grams: usage.GramsUsed})
		}
	}

	err := s.repo.PostLedgerEntry(ctx, &entry)
	if errors.Is(err, store.ErrConflict) {
		log.Info("sale already posted")
		return nil
	}
	if err != nil {
		return fmt.Errorf("post sale: %w", err)
	}
	return nil
}

func (s *Service) openProductionOrder(ctx context.Context, log *zap.Logger, q models.Quote) error {
	order := models.ProductionOrder{
		QuoteID:      q.ID,
		Title:        q.Title,
		PlannedGrams: q.PlannedGrams(),
		CreatedAt:    *q.ApprovedAt,
	}
	if order.Title == "" {
		order.Title = "Orçamento " + shortID(q.ID)
	}

	err := s.repo.CreateProductionOrder(ctx, &order)
	if errors.Is(err, store.ErrConflict) {
		log.Info("production order already open")
		return nil
	}
	if err != nil {
		return fmt.Errorf("open production order: %w", err)
	}
	return nil
}

// CompleteProduction closes a production order with the grams the print
// actually consumed.
func (s *Service) CompleteProduction(ctx context.Context, id string, actualGrams float64) error {
	if err := input.CheckNonNegative(actualGrams, "actualGrams"); err != nil {
		return input.Violations{"actualGrams": err.Error()}
	}

	err := s.repo.CompleteProductionOrder(ctx, id, actualGrams, s.now())
	if errors.Is(err, store.ErrConflict) {
		return ErrOrderCompleted
	}
	if err != nil {
		return err
	}
	s.log.Info("production order completed",
		zap.String("order_id", id),
		zap.Float64("actual_grams", actualGrams),
	)
	return nil
}

func (s *Service) publishApproved(ctx context.Context, q models.Quote) error {
	if s.events == nil {
		return nil
	}
	err := s.events.Publish(ctx, events.RoutingQuoteApproved, events.QuoteApproved{
		QuoteID:    q.ID,
		Title:      q.Title,
		ClientID:   q.ClientID,
		Channel:    string(q.EffectiveChannel()),
		TotalCost:  q.TotalCost,
		FinalPrice: q.FinalPrice,
		NetValue:   q.NetValue,
		ApprovedAt: *q.ApprovedAt,
	})
	if err != nil {
		return fmt.Errorf("publish approval: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
