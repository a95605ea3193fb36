package vault

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mekdi/faction-services/internal/arenasvc/models"
)

// RouterClient talks to the external swap router used to convert harvested
// yield into the reward denomination during epoch finalization.
type RouterClient struct {
	baseURL string
	http    *http.Client
}

func NewRouterClient(baseURL string) *RouterClient {
	return &RouterClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type swapRequest struct {
	TokenIn  string          `json:"token_in"`
	TokenOut string          `json:"token_out"`
	AmountIn decimal.Decimal `json:"amount_in"`
	MinOut   decimal.Decimal `json:"min_out"`
}

type swapResponse struct {
	AmountOut decimal.Decimal `json:"amount_out"`
}

func (c *RouterClient) SwapExactIn(tokenIn, tokenOut string, amountIn, minOut int64) (int64, error) {
	payload, err := json.Marshal(swapRequest{
		TokenIn:  tokenIn,
		TokenOut: tokenOut,
		AmountIn: models.DecimalFromFixed(amountIn),
		MinOut:   models.DecimalFromFixed(minOut),
	})
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Post(c.baseURL+"/v1/swap", "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("swap request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("swap request: status %d", resp.StatusCode)
	}

	var body swapResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("swap decode: %v", err)
	}
	return models.FixedFromDecimal(body.AmountOut), nil
}
