package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smsrent/rental-system/internal/api/metrics"
	"github.com/smsrent/rental-system/internal/core/domain"
	"github.com/smsrent/rental-system/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// DaisySMS speaks the upstream's plain-text API: one GET per operation with
// the action in a query parameter, colon-delimited tokens in the body, and
// side-channel data (actual price, full message text) in response headers.
type DaisySMS struct {
	logger     zerolog.Logger
	httpClient *http.Client
	apiURL     string
	apiKey     string
}

func NewDaisySMS(logger zerolog.Logger, apiURL, apiKey string, httpClient *http.Client) *DaisySMS {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &DaisySMS{
		logger:     logger.With().Str("provider", "daisysms").Logger(),
		httpClient: httpClient,
		apiURL:     apiURL,
		apiKey:     apiKey,
	}
}

// ReserveNumber leases a number for the given service. maxPrice is in the
// upstream's currency (USD); the actual price paid arrives in the X-Price
// header alongside an ACCESS_NUMBER body.
func (d *DaisySMS) ReserveNumber(ctx context.Context, service string, maxPrice float64) (*ports.ReserveResult, error) {
	params := url.Values{}
	params.Set("action", "getNumber")
	params.Set("service", service)
	params.Set("max_price", strconv.FormatFloat(maxPrice, 'f', -1, 64))

	body, header, err := d.call(ctx, "getNumber", params)
	if err != nil {
		return nil, err
	}

	result := parseReserve(body)
	if result.Outcome == ports.ReserveOK {
		if price, perr := strconv.ParseFloat(header.Get("X-Price"), 64); perr == nil {
			result.PricePaid = price
		}
	}

	metrics.ProviderRequestsTotal.WithLabelValues("getNumber", string(result.Outcome)).Inc()
	if result.Outcome == ports.ReserveUnknown {
		d.logger.Warn().Str("raw", result.Raw).Msg("unrecognized getNumber response")
	}
	return result, nil
}

// GetStatus polls a leased number. The full message text rides in the X-Text
// header next to a STATUS_OK body.
func (d *DaisySMS) GetStatus(ctx context.Context, rentalID string) (*ports.StatusResult, error) {
	params := url.Values{}
	params.Set("action", "getStatus")
	params.Set("id", rentalID)
	params.Set("text", "1")

	body, header, err := d.call(ctx, "getStatus", params)
	if err != nil {
		return nil, err
	}

	result := parseStatus(body)
	if result.Outcome == ports.StatusCode {
		if text := header.Get("X-Text"); text != "" {
			result.Text = text
		}
	}

	metrics.ProviderRequestsTotal.WithLabelValues("getStatus", string(result.Outcome)).Inc()
	if result.Outcome == ports.StatusUnknown {
		d.logger.Warn().Str("raw", result.Raw).Msg("unrecognized getStatus response")
	}
	return result, nil
}

// GetBalance reads the upstream account balance in USD.
func (d *DaisySMS) GetBalance(ctx context.Context) (float64, error) {
	params := url.Values{}
	params.Set("action", "getBalance")

	body, _, err := d.call(ctx, "getBalance", params)
	if err != nil {
		return 0, err
	}

	if strings.HasPrefix(body, "ACCESS_BALANCE:") {
		balance, perr := strconv.ParseFloat(strings.TrimPrefix(body, "ACCESS_BALANCE:"), 64)
		if perr != nil {
			metrics.ProviderRequestsTotal.WithLabelValues("getBalance", "unknown").Inc()
			return 0, fmt.Errorf("malformed balance %q: %w", body, perr)
		}
		metrics.ProviderRequestsTotal.WithLabelValues("getBalance", "ok").Inc()
		return balance, nil
	}
	if body == "BAD_KEY" {
		metrics.ProviderRequestsTotal.WithLabelValues("getBalance", "bad_key").Inc()
		return 0, domain.ErrProviderConfig
	}
	metrics.ProviderRequestsTotal.WithLabelValues("getBalance", "unknown").Inc()
	return 0, fmt.Errorf("unrecognized getBalance response %q", body)
}

// call performs one GET against the upstream and returns the trimmed body
// and response headers. Errors here are transport-level only.
func (d *DaisySMS) call(ctx context.Context, action string, params url.Values) (string, http.Header, error) {
	params.Set("api_key", d.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", nil, fmt.Errorf("build %s request: %w", action, err)
	}

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	metrics.ProviderRequestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(action, "transport_error").Inc()
		return "", nil, fmt.Errorf("%s request: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(action, "transport_error").Inc()
		return "", nil, fmt.Errorf("read %s response: %w", action, err)
	}
	return strings.TrimSpace(string(raw)), resp.Header, nil
}

// parseReserve maps a getNumber body to its tagged outcome.
// Success format: ACCESS_NUMBER:<id>:<phone>
func parseReserve(body string) *ports.ReserveResult {
	if strings.HasPrefix(body, "ACCESS_NUMBER:") {
		parts := strings.SplitN(body, ":", 3)
		if len(parts) == 3 && parts[1] != "" && parts[2] != "" {
			return &ports.ReserveResult{
				Outcome:     ports.ReserveOK,
				RentalID:    parts[1],
				PhoneNumber: parts[2],
				Raw:         body,
			}
		}
		return &ports.ReserveResult{Outcome: ports.ReserveUnknown, Raw: body}
	}

	outcomes := map[string]ports.ReserveOutcome{
		"NO_NUMBERS":              ports.ReserveNoNumbers,
		"NO_MONEY":                ports.ReserveOutOfFunds,
		"MAX_PRICE_EXCEEDED":      ports.ReserveMaxPriceExceeded,
		"TOO_MANY_ACTIVE_RENTALS": ports.ReserveTooManyRentals,
		"BAD_SERVICE":             ports.ReserveBadService,
		"BAD_KEY":                 ports.ReserveBadKey,
	}
	if outcome, ok := outcomes[body]; ok {
		return &ports.ReserveResult{Outcome: outcome, Raw: body}
	}
	return &ports.ReserveResult{Outcome: ports.ReserveUnknown, Raw: body}
}

// parseStatus maps a getStatus body to its tagged outcome.
// Success format: STATUS_OK:<code>
func parseStatus(body string) *ports.StatusResult {
	if strings.HasPrefix(body, "STATUS_OK:") {
		code := strings.TrimPrefix(body, "STATUS_OK:")
		if code == "" {
			return &ports.StatusResult{Outcome: ports.StatusUnknown, Raw: body}
		}
		return &ports.StatusResult{Outcome: ports.StatusCode, Code: code, Text: code, Raw: body}
	}

	switch body {
	case "STATUS_WAIT_CODE":
		return &ports.StatusResult{Outcome: ports.StatusWaiting, Raw: body}
	case "STATUS_CANCEL":
		return &ports.StatusResult{Outcome: ports.StatusCancelled, Raw: body}
	case "NO_ACTIVATION":
		return &ports.StatusResult{Outcome: ports.StatusNotFound, Raw: body}
	default:
		return &ports.StatusResult{Outcome: ports.StatusUnknown, Raw: body}
	}
}
