package mercadopago

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phenrril/printmarket/internal/domain"
)

const DefaultAPIURL = "https://api.mercadopago.com"

type Gateway struct {
	token      string
	secret     string
	apiURL     string
	baseURL    string
	sandbox    bool
	httpClient *http.Client
}

type Options struct {
	Token string
	// Secret signs the external reference sent with each preference.
	Secret string
	// APIURL defaults to DefaultAPIURL.
	APIURL string
	// PublicBaseURL is where MercadoPago sends buyers back and posts webhooks.
	PublicBaseURL string
	Production    bool
}

func NewGateway(opts Options) *Gateway {
	api := strings.TrimRight(opts.APIURL, "/")
	if api == "" {
		api = DefaultAPIURL
	}
	base := strings.TrimRight(opts.PublicBaseURL, "/")
	if base == "" {
		base = "http://localhost:8080"
	}
	secret := opts.Secret
	if secret == "" {
		secret = "dev"
	}
	return &Gateway{
		token:      opts.Token,
		secret:     secret,
		apiURL:     api,
		baseURL:    base,
		sandbox:    strings.HasPrefix(opts.Token, "TEST-") && !opts.Production,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type mpItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type mpPreferenceRequest struct {
	Items             []mpItem          `json:"items"`
	Payer             map[string]string `json:"payer,omitempty"`
	BackURLs          map[string]string `json:"back_urls,omitempty"`
	AutoReturn        string            `json:"auto_return,omitempty"`
	NotificationURL   string            `json:"notification_url,omitempty"`
	ExternalReference string            `json:"external_reference,omitempty"`
}

type mpPrefResp struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type mpPaymentResp struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

func (g *Gateway) signExternal(orderID string) string {
	h := hmac.New(sha256.New, []byte(g.secret))
	h.Write([]byte(orderID))
	return hex.EncodeToString(h.Sum(nil))[:24]
}

func (g *Gateway) ExternalRef(orderID string) string {
	return orderID + "|" + g.signExternal(orderID)
}

// VerifyExternalRef returns the order id carried by ext if its signature holds.
func (g *Gateway) VerifyExternalRef(ext string) (string, bool) {
	parts := strings.Split(ext, "|")
	if len(parts) != 2 {
		return "", false
	}
	orderID, sig := parts[0], parts[1]
	return orderID, hmac.Equal([]byte(g.signExternal(orderID)), []byte(sig))
}

// CreatePreference registers the order with MercadoPago and returns the
// checkout URL. The preference id is stored on the order.
func (g *Gateway) CreatePreference(ctx context.Context, o *domain.Order) (string, error) {
	if g.token == "" {
		return "", errors.New("missing MercadoPago token (MP_ACCESS_TOKEN)")
	}
	if o == nil {
		return "", errors.New("nil order")
	}
	items := make([]mpItem, 0, len(o.Items))
	for _, it := range o.Items {
		title := it.Title
		if it.Pages > 0 {
			title = fmt.Sprintf("%s (%d pages)", it.Title, it.Pages)
		}
		items = append(items, mpItem{Title: title, Quantity: it.Quantity, UnitPrice: it.UnitPrice, CurrencyID: "ARS"})
	}

	// Production credentials reject auto_return towards localhost.
	autoReturn := "approved"
	if !g.sandbox && strings.Contains(g.baseURL, "localhost") {
		autoReturn = ""
	}
	back := g.baseURL + "/api/orders/" + o.ID.String()
	payload := mpPreferenceRequest{
		Items:             items,
		Payer:             map[string]string{"email": o.Email},
		BackURLs:          map[string]string{"success": back, "pending": back, "failure": back},
		AutoReturn:        autoReturn,
		NotificationURL:   g.baseURL + "/webhooks/mp",
		ExternalReference: g.ExternalRef(o.ID.String()),
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode MP payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/checkout/preferences", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")
	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("MercadoPago connection: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		var mpError struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &mpError); err == nil && mpError.Message != "" {
			return "", fmt.Errorf("mp pref status %d: %s", res.StatusCode, mpError.Message)
		}
		return "", fmt.Errorf("mp pref status %d: %s", res.StatusCode, string(body))
	}
	var pref mpPrefResp
	if err := json.NewDecoder(res.Body).Decode(&pref); err != nil {
		return "", err
	}
	if pref.ID == "" {
		return "", errors.New("incomplete MP response")
	}
	o.MPPreferenceID = pref.ID
	if g.sandbox && pref.SandboxInitPoint != "" {
		return pref.SandboxInitPoint, nil
	}
	return pref.InitPoint, nil
}

// MercadoPago payment ids are numeric.
func isPaymentID(id string) bool {
	if len(id) > 32 {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// PaymentInfo returns the payment status and its external reference.
func (g *Gateway) PaymentInfo(ctx context.Context, paymentID string) (string, string, error) {
	if g.token == "" || paymentID == "" {
		return "", "", errors.New("params")
	}
	if !isPaymentID(paymentID) {
		return "", "", fmt.Errorf("invalid payment id %q", paymentID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"/v1/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", "", fmt.Errorf("mp payment status %d: %s", res.StatusCode, string(b))
	}
	var pr mpPaymentResp
	if err := json.NewDecoder(res.Body).Decode(&pr); err != nil {
		return "", "", err
	}
	return pr.Status, pr.ExternalReference, nil
}
