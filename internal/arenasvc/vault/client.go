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

// HTTP clients for the external vault and swap-router collaborators. The
// engine only sees the interfaces; amounts travel as decimal strings on the
// wire and are converted to fixed-point at this boundary.

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

func (c *Client) BalanceOf(addr string) (int64, error) {
	resp, err := c.http.Get(c.baseURL + "/v1/balance/" + addr)
	if err != nil {
		return 0, fmt.Errorf("vault balance request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("vault balance request: status %d", resp.StatusCode)
	}

	var body balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("vault balance decode: %v", err)
	}
	return models.FixedFromDecimal(body.Balance), nil
}

type harvestResponse struct {
	Amount decimal.Decimal `json:"amount"`
}

func (c *Client) HarvestYield() (int64, error) {
	resp, err := c.http.Post(c.baseURL+"/v1/harvest", "application/json", nil)
	if err != nil {
		return 0, fmt.Errorf("vault harvest request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("vault harvest request: status %d", resp.StatusCode)
	}

	var body harvestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("vault harvest decode: %v", err)
	}
	return models.FixedFromDecimal(body.Amount), nil
}

type transferRequest struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Transfer pays out reward tokens held by the vault's reward account.
func (c *Client) Transfer(to string, amount int64) error {
	payload, err := json.Marshal(transferRequest{To: to, Amount: models.DecimalFromFixed(amount)})
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.baseURL+"/v1/transfer", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("vault transfer request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vault transfer request: status %d", resp.StatusCode)
	}
	return nil
}
