package handlers

// AppHandlers bundles all HTTP handlers for route registration.
type AppHandlers struct {
	AuthHandler            *AuthHandler
	PaymentRequestHandler  *PaymentRequestHandler
	OutgoingPaymentHandler *OutgoingPaymentHandler
	WalletHandler          *WalletHandler
	PayHandler             *PayHandler
}
