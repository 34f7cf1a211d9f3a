package request

// ExchangeTokenRequest carries the request_token returned by the Kite login
// redirect, to be exchanged for an access token.
type ExchangeTokenRequest struct {
	RequestToken string `json:"request_token"`
}
