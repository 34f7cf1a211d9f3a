package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrTradeNotFound indicates that a trade with the given ID does not exist.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrExitNotFound indicates that an exit with the given ID does not exist
	// on the addressed trade.
	ErrExitNotFound = errors.New("exit not found")

	// ErrKiteSessionNotFound indicates no broker session has been stored yet.
	ErrKiteSessionNotFound = errors.New("kite session not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrExitExceedsRemaining indicates that an exit cannot be recorded because
	// the requested quantity is larger than the trade's remaining quantity.
	ErrExitExceedsRemaining = errors.New("exit quantity exceeds remaining quantity")

	// ErrQuantityBelowExited indicates that a trade edit would shrink the
	// quantity below what has already been exited.
	ErrQuantityBelowExited = errors.New("quantity cannot be less than already-exited shares")

	// ErrInvalidQuantity indicates a non-positive quantity on trade or exit input.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidPrice indicates a non-positive price on trade or exit input.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	// Trade operation errors
	ErrFailedToRetrieveTrades = errors.New("failed to retrieve trades")
	ErrFailedToRetrieveTrade  = errors.New("failed to retrieve trade")

	// Statistics operation errors
	ErrFailedToComputeStatistics = errors.New("failed to compute statistics")

	// Import operation errors
	ErrFailedToImportTrades = errors.New("failed to import trades")
	ErrInvalidCSVInput      = errors.New("invalid CSV input")

	// Kite operation errors
	ErrFailedToExchangeToken    = errors.New("failed to exchange kite request token")
	ErrFailedToRetrieveHoldings = errors.New("failed to retrieve holdings")
	ErrFailedToRetrieveOrders   = errors.New("failed to retrieve orders")
	ErrFailedToStoreKiteSession = errors.New("failed to store kite session")
	ErrFailedToDecryptToken     = errors.New("failed to decrypt stored access token")
	ErrKiteCredentialsNotSet    = errors.New("kite api credentials not configured")

	// System operation errors
	ErrFailedToGetVersionInfo = errors.New("failed to get version information")
)
