package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/tradelog/trading-journal-backend/internal/apperrors"
	"github.com/tradelog/trading-journal-backend/internal/importer"
	"github.com/tradelog/trading-journal-backend/internal/kite"
	"github.com/tradelog/trading-journal-backend/internal/model"
	"github.com/tradelog/trading-journal-backend/internal/repository"
)

// tokenTTL bounds how long a stored broker token is trusted. Kite access
// tokens expire daily on the broker side; anything older is treated as absent
// so callers are sent back through the login flow.
const tokenTTL = 24 * time.Hour

// KiteService handles the broker session lifecycle and the broker-backed
// lookups: login URL, request-token exchange, holdings, and the day's
// completed orders for the order import.
type KiteService struct {
	client      kite.Client
	sessionRepo *repository.KiteSessionRepository
	tokenKey    *fernet.Key
}

// NewKiteService creates a new KiteService. tokenKey encrypts the access
// token at rest; it must be the key the stored session was written with.
func NewKiteService(client kite.Client, sessionRepo *repository.KiteSessionRepository, tokenKey *fernet.Key) *KiteService {
	return &KiteService{client: client, sessionRepo: sessionRepo, tokenKey: tokenKey}
}

// LoginURL returns the broker login redirect for the configured API key.
func (s *KiteService) LoginURL() string {
	return s.client.LoginURL()
}

// ExchangeToken trades the login redirect's request token for an access
// token and stores it encrypted, replacing any previous session.
func (s *KiteService) ExchangeToken(ctx context.Context, requestToken string) (*model.KiteSession, error) {
	if s.tokenKey == nil {
		return nil, apperrors.ErrKiteCredentialsNotSet
	}

	accessToken, err := s.client.ExchangeToken(ctx, requestToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToExchangeToken, err)
	}

	encrypted, err := fernet.EncryptAndSign([]byte(accessToken), s.tokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	if err := s.sessionRepo.UpsertSession(ctx, string(encrypted)); err != nil {
		return nil, err
	}

	return &model.KiteSession{Token: accessToken, CreatedAt: time.Now().UTC()}, nil
}

// GetStoredToken decrypts and returns the stored access token.
// Returns ErrKiteSessionNotFound when no session exists, the token fails to
// decrypt, or the session is older than the broker's daily token lifetime.
func (s *KiteService) GetStoredToken() (string, error) {
	if s.tokenKey == nil {
		return "", apperrors.ErrKiteSessionNotFound
	}

	encrypted, createdAt, err := s.sessionRepo.GetSession()
	if err != nil {
		return "", err
	}
	if encrypted == "" {
		return "", apperrors.ErrKiteSessionNotFound
	}
	if time.Since(createdAt) > tokenTTL {
		return "", apperrors.ErrKiteSessionNotFound
	}

	token := fernet.VerifyAndDecrypt([]byte(encrypted), tokenTTL, []*fernet.Key{s.tokenKey})
	if token == nil {
		return "", apperrors.ErrKiteSessionNotFound
	}
	return string(token), nil
}

// GetHoldings fetches the broker's current holdings using the stored session.
func (s *KiteService) GetHoldings(ctx context.Context) ([]model.Holding, error) {
	token, err := s.GetStoredToken()
	if err != nil {
		return nil, err
	}

	raw, err := s.client.GetHoldings(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveHoldings, err)
	}

	holdings := make([]model.Holding, 0, len(raw))
	for _, h := range raw {
		holdings = append(holdings, model.Holding{
			Symbol:       importer.NormalizeSymbol(h.TradingSymbol),
			Quantity:     h.Quantity,
			AveragePrice: h.AveragePrice,
			LastPrice:    h.LastPrice,
			PrevDayLow:   h.DayLow,
		})
	}
	return holdings, nil
}

// GetOrders fetches the day's order list using the stored session. Filtering
// to completed orders happens in the importer.
func (s *KiteService) GetOrders(ctx context.Context) ([]kite.Order, error) {
	token, err := s.GetStoredToken()
	if err != nil {
		return nil, err
	}

	orders, err := s.client.GetOrders(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveOrders, err)
	}
	return orders, nil
}
