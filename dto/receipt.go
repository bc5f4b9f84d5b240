package dto

// ReceiptData is one structured receipt as returned by the LLM/OCR layer.
type ReceiptData struct {
	Amount         string `json:"amount"`
	Date           string `json:"date,omitempty"`
	Vendor         string `json:"vendor,omitempty"`
	Category       string `json:"category,omitempty"`
	Description    string `json:"description,omitempty"`
	Currency       string `json:"currency,omitempty"`
	TransactionRef string `json:"transaction_ref,omitempty"`
}

// OCRResult is the combined output of document processing: the raw text plus
// any structured receipts the LLM produced.
type OCRResult struct {
	Text         string        `json:"text"`
	Receipts     []ReceiptData `json:"receipts"`
	ReceiptCount int           `json:"receipt_count"`
}

// DocumentQuality carries OCR confidence scoring for a processed upload.
type DocumentQuality struct {
	OcrConfidence float64  `json:"ocr_confidence"`
	FinalScore    float64  `json:"final_score"`
	Issues        []string `json:"issues,omitempty"`
}
