package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/poliverai/poliver/api"
	"github.com/poliverai/poliver/bus"
	"github.com/poliverai/poliver/log"
	"github.com/poliverai/poliver/metrics"
	"github.com/poliverai/poliver/types"
)

const (
	createSessionPath = "/api/v1/create-checkout-session"
	transactionsPath  = "/api/v1/transactions/"
)

// ErrNoSessionID marks a slot that cannot be reconciled because the
// checkout endpoint never returned a session identifier. The slot stays in
// place so the user can discard it explicitly.
var ErrNoSessionID = errors.New("pending checkout has no session id")

// Session is the created hosted-checkout session.
type Session struct {
	ID          *string
	RedirectURL string
}

// Outcome is the result of one reconciliation check.
type Outcome struct {
	Status  types.TransactionStatus
	Success bool
	// Title and Message mirror the payment:result notification payload.
	Title   string
	Message string
}

// Config configures a checkout Manager.
type Config struct {
	// Store is the pending-checkout slot (required).
	Store Store
	// API is the shared HTTP client (required).
	API *api.Client
	// Bus receives reconciliation notifications. May be nil.
	Bus *bus.Bus
	// Logger defaults to a no-op logger.
	Logger *log.Logger
	// Metrics may be nil.
	Metrics *metrics.Collector
	// SuccessURL and CancelURL are sent to the checkout endpoint as the
	// provider redirect targets.
	SuccessURL string
	CancelURL  string
}

// Manager creates hosted-checkout sessions and reconciles their outcomes
// against the transaction status endpoint.
type Manager struct {
	store      Store
	api        *api.Client
	bus        *bus.Bus
	logger     *log.Logger
	collector  *metrics.Collector
	successURL string
	cancelURL  string
}

// NewManager creates a checkout manager.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{
		store:      cfg.Store,
		api:        cfg.API,
		bus:        cfg.Bus,
		logger:     logger,
		collector:  cfg.Metrics,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
}

type createSessionRequest struct {
	AmountUSD   float64 `json:"amount_usd"`
	Description string  `json:"description"`
	PaymentType string  `json:"payment_type"`
	SuccessURL  string  `json:"success_url,omitempty"`
	CancelURL   string  `json:"cancel_url,omitempty"`
}

type createSessionResponse struct {
	SessionID   *string `json:"session_id"`
	RedirectURL string  `json:"url"`
}

// Begin creates a hosted-checkout session and saves it as the pending slot.
//
// The returned session carries the provider redirect URL. Slot persistence
// failures are logged, never returned: a save failure only degrades
// resumability after a restart, it does not invalidate the session the
// provider just created.
func (m *Manager) Begin(ctx context.Context, purchaseType types.PurchaseType, amountUSD float64) (*Session, error) {
	req := createSessionRequest{
		AmountUSD:   amountUSD,
		Description: fmt.Sprintf("%s purchase ($%.2f)", purchaseType, amountUSD),
		PaymentType: string(purchaseType),
		SuccessURL:  m.successURL,
		CancelURL:   m.cancelURL,
	}

	headers := http.Header{"Idempotency-Key": []string{uuid.NewString()}}

	var resp createSessionResponse
	if err := m.api.PostJSON(ctx, createSessionPath, req, &resp, headers); err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if resp.RedirectURL == "" {
		return nil, errors.New("checkout endpoint returned no redirect URL")
	}

	if prev := m.Pending(); prev != nil {
		m.logger.Warn("overwriting unreconciled pending checkout", map[string]any{
			"previous_session_id": sessionIDString(prev.SessionID),
			"previous_type":       string(prev.Type),
		})
	}

	record := &types.PendingCheckout{
		SessionID: resp.SessionID,
		Type:      purchaseType,
		AmountUSD: amountUSD,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.Save(record); err != nil {
		m.logger.Warn("failed to persist pending checkout", map[string]any{
			"error": err.Error(),
		})
	}

	return &Session{ID: resp.SessionID, RedirectURL: resp.RedirectURL}, nil
}

// Pending returns the cached pending-checkout slot, or nil when the slot is
// empty or the store is failing (load errors are logged).
func (m *Manager) Pending() *types.PendingCheckout {
	record, err := m.store.Load()
	if err != nil {
		m.logger.Warn("failed to load pending checkout", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	return record
}

// Discard clears the pending slot without reconciling it.
func (m *Manager) Discard() error {
	return m.store.Clear()
}

// Reconcile runs one trigger-driven reconciliation pass.
//
// With no pending slot it is a no-op returning (nil, nil). Otherwise it
// queries the transaction status endpoint and:
//   - terminal status (completed or failed): clears the slot and publishes
//     exactly one payment:refresh-user, one transactions:refresh, and one
//     payment:result notification
//   - pending or unknown status: leaves the slot and publishes nothing, so
//     a later trigger retries the same session
//   - network or HTTP failure: leaves the slot and returns the error
func (m *Manager) Reconcile(ctx context.Context) (*Outcome, error) {
	record := m.Pending()
	if record == nil {
		return nil, nil
	}

	m.collector.IncReconcileChecks()

	if record.SessionID == nil || *record.SessionID == "" {
		m.collector.IncReconcileErrors()
		return nil, ErrNoSessionID
	}
	sid := *record.SessionID

	var tx types.Transaction
	if err := m.api.GetJSON(ctx, transactionsPath+sid, &tx); err != nil {
		m.collector.IncReconcileErrors()
		return nil, fmt.Errorf("check transaction %s: %w", sid, err)
	}

	status := types.ParseTransactionStatus(tx.Status)
	if !status.IsTerminal() {
		m.logger.Debug("checkout still unresolved", map[string]any{
			"session_id": sid,
			"status":     string(status),
		})
		return &Outcome{Status: status}, nil
	}

	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear reconciled checkout", map[string]any{
			"session_id": sid,
			"error":      err.Error(),
		})
	}
	m.collector.IncReconcileCleared()

	outcome := m.outcomeFor(status, record, &tx)
	m.notify(outcome)

	m.logger.Info("checkout reconciled", map[string]any{
		"session_id": sid,
		"status":     string(status),
		"success":    outcome.Success,
	})
	return outcome, nil
}

func (m *Manager) outcomeFor(status types.TransactionStatus, record *types.PendingCheckout, tx *types.Transaction) *Outcome {
	if status == types.TxCompleted {
		message := fmt.Sprintf("Your %s purchase of $%.2f was processed.", record.Type, record.AmountUSD)
		return &Outcome{
			Status:  status,
			Success: true,
			Title:   "Payment Successful",
			Message: message,
		}
	}

	title := FailureLabel(tx.FailureCode)
	message := "Your payment was not completed."
	if tx.FailureMessage != nil && *tx.FailureMessage != "" {
		message = *tx.FailureMessage
	}
	return &Outcome{
		Status:  status,
		Success: false,
		Title:   title,
		Message: message,
	}
}

func (m *Manager) notify(outcome *Outcome) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(bus.TopicRefreshUser, nil)
	m.bus.Publish(bus.TopicRefreshTransactions, nil)
	m.bus.Publish(bus.TopicPaymentResult, bus.PaymentResult{
		Success: outcome.Success,
		Title:   outcome.Title,
		Message: outcome.Message,
	})
	m.collector.IncNotificationsPublished()
}

func sessionIDString(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
