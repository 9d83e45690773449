package ingest

// StatusUpdateRequest is the typed shape of an inbound server-to-server
// notification. The verbatim body is what gets persisted; this struct only
// drives verification and state derivation.
type StatusUpdateRequest struct {
	NotificationType   string       `json:"notification_type" validate:"required"`
	Password           string       `json:"password"`
	Environment        string       `json:"environment"`
	AutoRenewProductID string       `json:"auto_renew_product_id"`
	AutoRenewStatus    *bool        `json:"auto_renew_status"`
	LatestReceiptInfo  *ReceiptInfo `json:"latest_receipt_info" validate:"required"`
}

// ReceiptInfo is the nested transaction block of a notification. Senders put
// auto_renew_status here; the top-level field above is accepted as a fallback
// for older payload shapes.
type ReceiptInfo struct {
	TransactionID         string `json:"transaction_id" validate:"required"`
	OriginalTransactionID string `json:"original_transaction_id"`
	ProductID             string `json:"product_id"`
	AppAccountToken       string `json:"app_account_token" validate:"required"`
	ExpiresDateMS         *int64 `json:"expires_date_ms"`
	PurchaseDateMS        *int64 `json:"purchase_date_ms"`
	AutoRenewStatus       *bool  `json:"auto_renew_status"`
}
