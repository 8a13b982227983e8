package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pos-basket/internal/model"
	"pos-basket/internal/transport"
)

// basketAPIPath is the base path for basket resources, per store.
const basketAPIPath = "/s/%s/dw/shop/v1"

// userAgent identifies this client to the gateway. The gateway's CDN
// rate-limits requests without one.
const userAgent = "pos-basket/1.0"

// Config holds gateway client configuration.
type Config struct {
	// BaseURL of the commerce gateway, without trailing slash.
	BaseURL string
	// StoreID selects the store whose baskets this session edits.
	StoreID string
	// ClientID and ClientSecret authenticate the registered client.
	// Token acquisition itself is handled by the transport collaborator.
	ClientID     string
	ClientSecret string
	// Timeout bounds each gateway call. In-flight mutations cannot be
	// aborted; this is the only bound on a long-running call.
	Timeout time.Duration
}

// Client talks to the remote commerce gateway over its REST basket API.
// Every response carries an ETag; every mutating request sends the caller's
// token as If-Match. The client does not retry; conflict recovery belongs
// to the sync core.
type Client struct {
	httpClient *http.Client
	baseURL    string
	storeID    string
	clientID   string
}

// New creates a gateway client with the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	if cfg.StoreID == "" {
		return nil, fmt.Errorf("store ID is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	// Chrome TLS fingerprint transport: the gateway sits behind a CDN that
	// throttles clients by JA3 fingerprint. See internal/transport.
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport.NewChromeTransport(timeout),
		},
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		storeID:  cfg.StoreID,
		clientID: cfg.ClientID,
	}, nil
}

// === Interface implementation ===

// GetBasket fetches the current basket, creating one server-side when none
// exists for this client session.
func (c *Client) GetBasket(ctx context.Context) (*model.Basket, error) {
	return c.doBasket(ctx, http.MethodGet, "/baskets/current", "", nil)
}

// DeleteBasket removes the basket. The etag still gates the delete so a
// basket touched by another channel is not destroyed blindly.
func (c *Client) DeleteBasket(ctx context.Context, basketID, etag string) error {
	_, err := c.do(ctx, http.MethodDelete, "/baskets/"+basketID, etag, nil, nil)
	return err
}

func (c *Client) AddItem(ctx context.Context, basketID, etag, productID string, quantity int) (*model.Basket, error) {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	return c.doBasket(ctx, http.MethodPost, "/baskets/"+basketID+"/items", etag, body)
}

func (c *Client) UpdateItemQuantity(ctx context.Context, basketID, etag, itemID string, quantity int) (*model.Basket, error) {
	body := map[string]any{"quantity": quantity}
	return c.doBasket(ctx, http.MethodPatch, "/baskets/"+basketID+"/items/"+itemID, etag, body)
}

func (c *Client) RemoveItem(ctx context.Context, basketID, etag, itemID string) (*model.Basket, error) {
	return c.doBasket(ctx, http.MethodDelete, "/baskets/"+basketID+"/items/"+itemID, etag, nil)
}

func (c *Client) SetShippingAddress(ctx context.Context, basketID, etag string, addr model.Address) (*model.Basket, error) {
	body := map[string]any{"shipping_address": addressDocument(addr)}
	return c.doBasket(ctx, http.MethodPut, "/baskets/"+basketID+"/shipments/me/shipping-address", etag, body)
}

func (c *Client) SetBillingAddress(ctx context.Context, basketID, etag string, addr model.Address) (*model.Basket, error) {
	body := map[string]any{"billing_address": addressDocument(addr)}
	return c.doBasket(ctx, http.MethodPut, "/baskets/"+basketID+"/billing-address", etag, body)
}

func (c *Client) SetCustomerInfo(ctx context.Context, basketID, etag, email string) (*model.Basket, error) {
	body := map[string]any{"customer_info": map[string]string{"email": email}}
	return c.doBasket(ctx, http.MethodPut, "/baskets/"+basketID+"/customer", etag, body)
}

// GetShippingMethods lists methods applicable to the basket's current
// shipping address. Read-only, so no etag is attached.
func (c *Client) GetShippingMethods(ctx context.Context, basketID string) ([]model.ShippingMethod, error) {
	respBody, _, err := c.doRaw(ctx, http.MethodGet, "/baskets/"+basketID+"/shipments/me/shipping-methods", "", nil)
	if err != nil {
		return nil, err
	}
	var doc ShippingMethodsDocument
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("parsing shipping methods: %w", err)
	}
	methods := make([]model.ShippingMethod, 0, len(doc.Methods))
	for _, m := range doc.Methods {
		methods = append(methods, m.toValue())
	}
	return methods, nil
}

func (c *Client) SetShippingMethod(ctx context.Context, basketID, etag, methodID string) (*model.Basket, error) {
	body := map[string]any{"shipping_method": map[string]string{"id": methodID}}
	return c.doBasket(ctx, http.MethodPut, "/baskets/"+basketID+"/shipments/me/shipping-method", etag, body)
}

func (c *Client) SetShippingPriceOverride(ctx context.Context, basketID, etag string, ov model.PriceOverride) (*model.Basket, error) {
	return c.doBasket(ctx, http.MethodPut, "/baskets/"+basketID+"/shipments/me/price-override", etag, overrideBody(ov))
}

func (c *Client) SetProductPriceOverride(ctx context.Context, basketID, etag, itemID string, ov model.PriceOverride) (*model.Basket, error) {
	return c.doBasket(ctx, http.MethodPut, "/baskets/"+basketID+"/items/"+itemID+"/price-override", etag, overrideBody(ov))
}

func (c *Client) AddCoupon(ctx context.Context, basketID, etag, code string) (*model.Basket, error) {
	body := map[string]any{"code": code}
	return c.doBasket(ctx, http.MethodPost, "/baskets/"+basketID+"/coupons", etag, body)
}

func (c *Client) RemoveCoupon(ctx context.Context, basketID, etag, code string) (*model.Basket, error) {
	return c.doBasket(ctx, http.MethodDelete, "/baskets/"+basketID+"/coupons/"+url.PathEscape(code), etag, nil)
}

func (c *Client) AddPaymentInstrument(ctx context.Context, basketID, etag string, req PaymentRequest) (*model.Basket, error) {
	return c.doBasket(ctx, http.MethodPost, "/baskets/"+basketID+"/payment-instruments", etag, req)
}

func (c *Client) RemovePaymentInstrument(ctx context.Context, basketID, etag, instrumentID string) (*model.Basket, error) {
	return c.doBasket(ctx, http.MethodDelete, "/baskets/"+basketID+"/payment-instruments/"+instrumentID, etag, nil)
}

// GiftCardBalance checks a card's remaining balance from terminal track data.
func (c *Client) GiftCardBalance(ctx context.Context, track1, track2 string) (int64, error) {
	body := map[string]string{"track1": track1, "track2": track2}
	respBody, _, err := c.doRaw(ctx, http.MethodPost, "/gift-cards/balance", "", body)
	if err != nil {
		return 0, err
	}
	var doc GiftCardBalanceDocument
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return 0, fmt.Errorf("parsing balance response: %w", err)
	}
	return model.ParseCents(doc.Balance), nil
}

func (c *Client) CreateOrder(ctx context.Context, basketID, etag string) (*model.Basket, error) {
	return c.doBasket(ctx, http.MethodPost, "/baskets/"+basketID+"/order", etag, nil)
}

func (c *Client) AbandonOrder(ctx context.Context, basketID, etag string, req AbandonRequest) (*model.Basket, error) {
	return c.doBasket(ctx, http.MethodPost, "/baskets/"+basketID+"/order/abandon", etag, req)
}

// overrideBody builds the wire body for a price override mutation.
// Type none is sent as-is; the gateway treats it as removal.
func overrideBody(ov model.PriceOverride) map[string]any {
	body := map[string]any{"type": string(ov.Type)}
	if ov.Active() {
		body["value"] = model.FormatCents(ov.Value)
		body["reason_code"] = ov.ReasonCode
	}
	if ov.ManagerID != "" {
		body["manager_id"] = ov.ManagerID
	}
	return body
}

// === Request plumbing ===

// doBasket issues a request whose success body is a basket document and
// returns the transformed aggregate with the response etag attached.
func (c *Client) doBasket(ctx context.Context, method, path, etag string, body any) (*model.Basket, error) {
	respBody, respEtag, err := c.doRaw(ctx, method, path, etag, body)
	if err != nil {
		return nil, err
	}
	var doc BasketDocument
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("parsing basket response: %w", err)
	}
	return doc.ToBasket(respEtag), nil
}

// do issues a request and decodes the success body into out when non-nil.
func (c *Client) do(ctx context.Context, method, path, etag string, body, out any) (string, error) {
	respBody, respEtag, err := c.doRaw(ctx, method, path, etag, body)
	if err != nil {
		return "", err
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return "", fmt.Errorf("parsing response: %w", err)
		}
	}
	return respEtag, nil
}

// doRaw issues one gateway call. It attaches If-Match for mutating methods,
// classifies error responses into faults, and returns the body plus the
// response ETag. Exactly one call per invocation: retries live upstream.
func (c *Client) doRaw(ctx context.Context, method, path, etag string, body any) ([]byte, string, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	fullURL := c.baseURL + fmt.Sprintf(basketAPIPath, c.storeID) + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req, etag)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", model.NewGatewayFault(err)
	}
	defer resp.Body.Close()

	respEtag := resp.Header.Get("ETag")
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, "", parseFaultResponse(resp.StatusCode, respBody)
	}
	return respBody, respEtag, nil
}

// doDiscovery fetches the capabilities endpoint and returns the body plus
// the Commerce-Capabilities response header.
func (c *Client) doDiscovery(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/.well-known/commerce", nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating discovery request: %w", err)
	}
	c.setHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", model.NewGatewayFault(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading discovery response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, "", parseFaultResponse(resp.StatusCode, respBody)
	}
	return respBody, resp.Header.Get("Commerce-Capabilities"), nil
}

// setHeaders sets the standard headers for a gateway request.
// If-Match is only meaningful on mutations; sending it on reads is harmless
// and keeps the call sites uniform.
func (c *Client) setHeaders(req *http.Request, etag string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Client-Id", c.clientID)
	if etag != "" {
		req.Header.Set("If-Match", etag)
	}
}

// parseFaultResponse converts a gateway error body into a typed fault.
func parseFaultResponse(statusCode int, body []byte) error {
	var doc FaultDocument
	json.Unmarshal(body, &doc) // Best effort parse

	ft := doc.Fault.Type
	msg := doc.Fault.Message

	// Fault type wins over status code: some deployments return conflict
	// faults with a 400 envelope.
	if isConflictFaultType(ft) {
		return model.NewConflictFault(msg)
	}

	switch statusCode {
	case http.StatusPreconditionFailed, http.StatusConflict:
		return model.NewConflictFault(msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		f := model.NewAuthorizationFault("associate")
		if msg != "" {
			f.Message = msg
		}
		if ft != "" {
			f.Code = ft
		}
		return f
	case http.StatusNotFound:
		return model.NewNotFoundFault("basket resource")
	case http.StatusBadRequest:
		f := &model.Fault{Type: model.FaultValidation, Code: ft, Message: msg, Err: model.ErrValidation}
		if f.Code == "" {
			f.Code = "VALIDATION"
		}
		if f.Message == "" {
			f.Message = "invalid request"
		}
		return f
	default:
		return model.NewGatewayFault(fmt.Errorf("status %d: %s - %s", statusCode, ft, msg))
	}
}

// isConflictFaultType matches the gateway's precondition fault family.
func isConflictFaultType(ft string) bool {
	switch ft {
	case "OptimisticLockingFailedException", "PreconditionFailedException", "InvalidIfMatchException":
		return true
	}
	return false
}
