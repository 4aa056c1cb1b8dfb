package payment

// restPaymentRequest is the wire format sent to the payment processor
type restPaymentRequest struct {
	MerchantID     string `json:"merchant_id"`
	OrderNumber    string `json:"order_number"`
	DeliveryNumber string `json:"delivery_number,omitempty"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	TransactionRef string `json:"transaction_ref,omitempty"`
}

// restPaymentResponse is the processor's verdict on one operation
type restPaymentResponse struct {
	Result         string `json:"result"` // approved, processing, declined
	TransactionRef string `json:"transaction_ref"`
	Message        string `json:"message,omitempty"`
}

const (
	restResultApproved   = "approved"
	restResultProcessing = "processing"
	restResultDeclined   = "declined"
)
