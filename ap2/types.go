// Package ap2 implements the AP2 mandate pipeline: CartMandate and
// PaymentMandate construction and verification, chained via
// cart_hash/pmt_hash over JCS-canonicalized contents.
package ap2

// CartContents is the merchant-authored shape a CartMandate's cart_hash is
// computed over. Item and method-data ordering is significant: JCS sorts
// object keys but MUST NOT reorder these arrays.
type CartContents struct {
	ID             string         `json:"id"`
	Items          []CartItem     `json:"items"`
	Shipping       *ShippingInfo  `json:"shipping,omitempty"`
	Total          MoneyAmount    `json:"total"`
	PaymentRequest PaymentRequest `json:"payment_request"`
}

// CartItem is one line item of a cart. Currency minor units are carried as
// JSON numbers; JCS prints them in ECMA-262 shortest form.
type CartItem struct {
	SKU         string      `json:"sku"`
	Label       string      `json:"label"`
	Quantity    int         `json:"quantity"`
	UnitPrice   MoneyAmount `json:"unit_price"`
}

// MoneyAmount is a currency amount in minor units (e.g. cents).
type MoneyAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        int64  `json:"value"`
}

// ShippingInfo describes a cart's delivery destination and method.
type ShippingInfo struct {
	Address string `json:"address"`
	Method  string `json:"method"`
}

// PaymentRequest carries method-data entries (QR/channel descriptors) a
// shopper's wallet can act on. Order MUST be preserved verbatim.
type PaymentRequest struct {
	MethodData []PaymentMethodData `json:"method_data"`
}

// PaymentMethodData is one accepted payment channel descriptor.
type PaymentMethodData struct {
	SupportedMethod string         `json:"supported_method"`
	Data            map[string]any `json:"data,omitempty"`
}

// CartMandate is the merchant's signed offer.
type CartMandate struct {
	Contents             CartContents `json:"contents"`
	MerchantAuthorization string      `json:"merchant_authorization"`
	Timestamp            string       `json:"timestamp"`
}

// PaymentMandateContents is the user-authored shape a PaymentMandate's
// pmt_hash is computed over.
type PaymentMandateContents struct {
	PaymentMandateID string `json:"payment_mandate_id"`
	MerchantDID      string `json:"merchant_did"`
	Amount           MoneyAmount `json:"amount"`
	// PrevHash optionally stamps the chaining marker back to the cart this
	// payment mandate settles.
	PrevHash string `json:"prev_hash,omitempty"`
}

// PaymentMandate is the shopper's signed authorization to pay, chained to
// a prior CartMandate via transaction_data.
type PaymentMandate struct {
	PaymentMandateContents PaymentMandateContents `json:"payment_mandate_contents"`
	UserAuthorization      string                 `json:"user_authorization"`
}
