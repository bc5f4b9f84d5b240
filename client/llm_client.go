package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/finqube/claimflow/dto"
)

// llmReceipt mirrors the JSON shape the model is asked to produce.
type llmReceipt struct {
	Amount         string `json:"amount"`
	Date           string `json:"date"`
	Vendor         string `json:"vendor"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Currency       string `json:"currency"`
	TransactionRef string `json:"transaction_ref"`
}

type llmResponse struct {
	Receipts []llmReceipt `json:"receipts"`
}

// LLMClient turns raw receipt text into structured receipt records using a
// chat model. Callers fall back to the regex heuristics when it errors or
// returns nothing.
type LLMClient struct {
	oai   *openai.Client
	model string
}

func NewLLMClient(apiKey, model string) *LLMClient {
	if apiKey == "" {
		return nil
	}
	return &LLMClient{
		oai:   openai.NewClient(apiKey),
		model: model,
	}
}

// StructureReceipts asks the model to parse every receipt in text.
func (c *LLMClient) StructureReceipts(ctx context.Context, text string, categories []string) ([]dto.ReceiptData, error) {
	var prompt strings.Builder
	prompt.WriteString("The following is OCR text from one or more expense receipts:\n\n")
	prompt.WriteString(text)
	prompt.WriteString("\n\nExtract every distinct receipt. For each one return amount (decimal string, no thousands separators), date (YYYY-MM-DD), vendor, category, description, currency and transaction_ref where visible. Pick category from this list: ")
	prompt.WriteString(strings.Join(categories, ", "))
	prompt.WriteString(`. Respond only with JSON of the form {"receipts": [...]}, no prose.`)

	resp, err := c.oai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt.String(),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("LLM receipt structuring failed: %w", err)
	}
	if len(resp.Choices) != 1 {
		return nil, fmt.Errorf("unexpected number of choices %d", len(resp.Choices))
	}

	raw := resp.Choices[0].Message.Content

	// Some models wrap the JSON in a code fence.
	if strings.Contains(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(raw, "```")
		raw = strings.TrimSpace(raw)
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("LLM returned invalid JSON: %w", err)
	}

	receipts := make([]dto.ReceiptData, 0, len(parsed.Receipts))
	for _, r := range parsed.Receipts {
		receipts = append(receipts, dto.ReceiptData{
			Amount:         r.Amount,
			Date:           r.Date,
			Vendor:         r.Vendor,
			Category:       r.Category,
			Description:    r.Description,
			Currency:       r.Currency,
			TransactionRef: r.TransactionRef,
		})
	}

	log.Info().Int("receipts", len(receipts)).Msg("LLM structured receipts")
	return receipts, nil
}
