// Package integration connects user data to third-party services: bank
// feeds through Plaid and invoice sync to Xero.
package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	appsettings "github.com/agencydesk/backend/internal/application/settings"
	"github.com/agencydesk/backend/internal/domain/finance"
	"github.com/agencydesk/backend/internal/domain/settings"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/apiclient"
	"github.com/agencydesk/backend/internal/infrastructure/integration/plaid"
	"github.com/agencydesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAccountNotFound is returned for an account id that is not connected
var ErrAccountNotFound = shared.NewNotFoundError("Bank account")

// upstreamError surfaces a failed third-party call as a domain error
func upstreamError(op string, err error) error {
	return shared.NewDomainError("UPSTREAM_ERROR", fmt.Sprintf("%s: %s", op, err.Error()))
}

// Option configures the integration services
type Option func(*options)

type options struct {
	metrics *telemetry.BusinessMetrics
	now     func() time.Time
}

// WithMetrics records business metrics
func WithMetrics(m *telemetry.BusinessMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BankLink is the Plaid surface the banking service needs
type BankLink interface {
	CreateLinkToken(ctx context.Context, userRef string) apiclient.Response[plaid.LinkToken]
	ExchangePublicToken(ctx context.Context, publicToken string) apiclient.Response[plaid.Exchange]
	GetAccounts(ctx context.Context, accessToken string) apiclient.Response[plaid.AccountsResult]
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*plaid.SyncResult, error)
	RemoveItem(ctx context.Context, accessToken string) apiclient.Response[struct{}]
}

// BankingService links bank accounts through Plaid and pulls their
// transactions into the reconciliation ledger. Access tokens and sync
// cursors live in the sealed banking.connected_accounts setting.
type BankingService struct {
	plaid   BankLink
	store   *appsettings.Store
	txs     finance.BankTransactionRepository
	cache   *query.Client
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
	now     func() time.Time

	// mu serializes read-modify-write of the stored account list
	mu sync.Mutex
}

// NewBankingService creates a BankingService
func NewBankingService(link BankLink, store *appsettings.Store, txs finance.BankTransactionRepository, cache *query.Client, logger *zap.Logger, opts ...Option) *BankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := buildOptions(opts)
	return &BankingService{
		plaid:   link,
		store:   store,
		txs:     txs,
		cache:   cache,
		metrics: o.metrics,
		logger:  logger,
		now:     o.now,
	}
}

// CreateLinkToken starts a Plaid Link session for the user
func (s *BankingService) CreateLinkToken(ctx context.Context, userID uuid.UUID) (*LinkTokenResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	token, err := s.plaid.CreateLinkToken(ctx, userID.String()).Unwrap()
	if err != nil {
		return nil, upstreamError("create link token", err)
	}
	return &LinkTokenResponse{LinkToken: token.LinkToken, Expiration: token.Expiration}, nil
}

// ExchangePublicToken trades the Link public token for an access token and
// stores every account of the item. Accounts already connected are replaced.
func (s *BankingService) ExchangePublicToken(ctx context.Context, userID uuid.UUID, req ExchangeTokenRequest) ([]AccountResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	exchange, err := s.plaid.ExchangePublicToken(ctx, req.PublicToken).Unwrap()
	if err != nil {
		return nil, upstreamError("exchange public token", err)
	}
	result, err := s.plaid.GetAccounts(ctx, exchange.AccessToken).Unwrap()
	if err != nil {
		return nil, upstreamError("get accounts", err)
	}

	linked := make(settings.ConnectedAccounts, 0, len(result.Accounts))
	for _, a := range result.Accounts {
		linked = append(linked, settings.ConnectedAccount{
			AccountID:   a.AccountID,
			ItemID:      exchange.ItemID,
			AccessToken: exchange.AccessToken,
			Name:        a.Name,
			Mask:        a.Mask,
			Type:        a.Type,
			Subtype:     a.Subtype,
			Institution: result.Item.InstitutionID,
		})
	}
	err = s.updateAccounts(ctx, userID, func(accounts settings.ConnectedAccounts) (settings.ConnectedAccounts, error) {
		for _, a := range linked {
			accounts = append(accounts.Without(a.AccountID), a)
		}
		return accounts, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bank accounts connected",
		zap.String("user_id", userID.String()),
		zap.String("item_id", exchange.ItemID),
		zap.Int("accounts", len(linked)))
	return ToAccountResponses(linked), nil
}

// ListAccounts returns the connected accounts without access tokens
func (s *BankingService) ListAccounts(ctx context.Context, userID uuid.UUID) ([]AccountResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	accounts, err := s.accounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToAccountResponses(accounts), nil
}

// SyncAccount pulls new transactions for one account from its stored cursor.
// Plaid syncs a whole item, so transactions of sibling accounts and pending
// ones are skipped; each account keeps its own cursor.
func (s *BankingService) SyncAccount(ctx context.Context, userID uuid.UUID, accountID string) (*SyncResult, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	accounts, err := s.accounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	acct := accounts.Find(accountID)
	if acct == nil {
		return nil, ErrAccountNotFound
	}

	page, err := s.plaid.SyncTransactions(ctx, acct.AccessToken, acct.Cursor)
	if err != nil {
		return nil, upstreamError("sync transactions", err)
	}

	result := &SyncResult{AccountID: accountID, SyncedAt: s.now()}
	txs := make([]finance.BankTransaction, 0, len(page.Added))
	for _, t := range page.Added {
		if t.AccountID != accountID || t.Pending {
			result.Skipped++
			continue
		}
		date, err := t.ParsedDate()
		if err != nil {
			s.logger.Warn("Skipping Plaid transaction with bad date",
				zap.String("transaction_id", t.TransactionID),
				zap.String("date", t.Date))
			result.Skipped++
			continue
		}
		txs = append(txs, finance.BankTransaction{
			OwnedEntity: shared.NewOwnedEntity(userID),
			AccountID:   accountID,
			Date:        date,
			// Plaid reports outflows as positive amounts
			Amount:      t.Amount.Neg().Round(2),
			Description: t.Description(),
			ExternalID:  t.TransactionID,
		})
	}
	result.Fetched = len(txs)

	if len(txs) > 0 {
		inserted, err := s.txs.Upsert(ctx, txs)
		if err != nil {
			return nil, fmt.Errorf("store synced transactions: %w", err)
		}
		result.Inserted = inserted
		result.Duplicates = len(txs) - inserted
	}

	syncedAt := result.SyncedAt
	err = s.updateAccounts(ctx, userID, func(accounts settings.ConnectedAccounts) (settings.ConnectedAccounts, error) {
		a := accounts.Find(accountID)
		if a == nil {
			return nil, ErrAccountNotFound
		}
		a.Cursor = page.NextCursor
		a.LastSyncedAt = &syncedAt
		return accounts, nil
	})
	if err != nil {
		return nil, err
	}

	if result.Inserted > 0 {
		s.cache.InvalidateResource(ctx, userID, query.ResourceBanking)
	}
	s.metrics.TransactionsSynced(ctx, result.Inserted)
	s.logger.Info("Bank account synced",
		zap.String("user_id", userID.String()),
		zap.String("account_id", accountID),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// DisconnectAccount removes the account and its transactions. The Plaid item
// is revoked once no other connected account uses it.
func (s *BankingService) DisconnectAccount(ctx context.Context, userID uuid.UUID, accountID string) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	accounts, err := s.accounts(ctx, userID)
	if err != nil {
		return err
	}
	acct := accounts.Find(accountID)
	if acct == nil {
		return ErrAccountNotFound
	}

	inUse := false
	for _, other := range accounts.Without(accountID) {
		if other.ItemID == acct.ItemID {
			inUse = true
			break
		}
	}
	if !inUse {
		if err := s.plaid.RemoveItem(ctx, acct.AccessToken).Err(); err != nil {
			return upstreamError("remove item", err)
		}
	}

	if err := s.txs.DeleteByAccount(ctx, userID, accountID); err != nil {
		return fmt.Errorf("delete account transactions: %w", err)
	}
	err = s.updateAccounts(ctx, userID, func(accounts settings.ConnectedAccounts) (settings.ConnectedAccounts, error) {
		return accounts.Without(accountID), nil
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateResource(ctx, userID, query.ResourceBanking)
	s.logger.Info("Bank account disconnected",
		zap.String("user_id", userID.String()),
		zap.String("account_id", accountID),
		zap.Bool("item_removed", !inUse))
	return nil
}

func (s *BankingService) accounts(ctx context.Context, userID uuid.UUID) (settings.ConnectedAccounts, error) {
	accounts, err := appsettings.GetOr(ctx, s.store, userID, settings.KeyConnectedAccounts, settings.ConnectedAccounts{})
	if err != nil {
		return nil, fmt.Errorf("load connected accounts: %w", err)
	}
	return accounts, nil
}

func (s *BankingService) updateAccounts(ctx context.Context, userID uuid.UUID, fn func(settings.ConnectedAccounts) (settings.ConnectedAccounts, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accounts(ctx, userID)
	if err != nil {
		return err
	}
	updated, err := fn(accounts)
	if err != nil {
		return err
	}
	if err := appsettings.Set(ctx, s.store, userID, settings.KeyConnectedAccounts, updated); err != nil {
		return fmt.Errorf("save connected accounts: %w", err)
	}
	return nil
}
