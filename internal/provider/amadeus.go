package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"faretrack/internal/models"
)

const (
	defaultBaseURL = "https://test.api.amadeus.com"
	tokenPath      = "/v1/security/oauth2/token"
	searchPath     = "/v2/shopping/flight-offers"

	defaultTimeout = 30 * time.Second
)

type amadeusResponse struct {
	Data []amadeusOffer `json:"data"`
}

type amadeusErrorResponse struct {
	Errors []amadeusError `json:"errors"`
}

type amadeusError struct {
	Status int    `json:"status"`
	Code   int    `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type amadeusOffer struct {
	ID          string             `json:"id"`
	Itineraries []amadeusItinerary `json:"itineraries"`
	Price       amadeusPrice       `json:"price"`
}

type amadeusItinerary struct {
	Duration string           `json:"duration"`
	Segments []amadeusSegment `json:"segments"`
}

type amadeusSegment struct {
	Departure amadeusEndpoint `json:"departure"`
	Arrival   amadeusEndpoint `json:"arrival"`
	Duration  string          `json:"duration"`
}

type amadeusEndpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

type amadeusPrice struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

// AmadeusConfig holds credentials and endpoint settings for the Amadeus
// flight-offers-search API.
type AmadeusConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

// AmadeusClient searches the Amadeus flight-offers-search endpoint. Token
// acquisition and refresh are handled by the oauth2 client underneath.
type AmadeusClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

func NewAmadeusClient(cfg AmadeusConfig, logger *log.Logger) (*AmadeusClient, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("amadeus: api key and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.APIKey,
		ClientSecret: cfg.APISecret,
		TokenURL:     cfg.BaseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	httpClient := cc.Client(context.Background())
	httpClient.Timeout = cfg.Timeout

	return &AmadeusClient{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		logger:     logger,
	}, nil
}

func (c *AmadeusClient) Name() string {
	return "amadeus"
}

func (c *AmadeusClient) Search(ctx context.Context, query models.SearchQuery) ([]models.Offer, error) {
	params := url.Values{}
	params.Set("originLocationCode", query.Origin)
	params.Set("destinationLocationCode", query.Destination)
	params.Set("departureDate", query.DepartureDate)
	params.Set("adults", strconv.Itoa(query.Adults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("amadeus: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amadeus: search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("amadeus: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, body)
	}

	var payload amadeusResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("amadeus: decode response: %w", err)
	}

	offers := make([]models.Offer, 0, len(payload.Data))
	for _, raw := range payload.Data {
		offer, err := c.normalize(raw)
		if err != nil {
			c.logger.Debug("skipping malformed offer", "id", raw.ID, "err", err)
			continue
		}
		offers = append(offers, offer)
	}

	return offers, nil
}

// normalize flattens the first itinerary of a wire offer into the internal
// model, the same way each provider-specific payload is normalized before it
// leaves this package.
func (c *AmadeusClient) normalize(raw amadeusOffer) (models.Offer, error) {
	if len(raw.Itineraries) == 0 {
		return models.Offer{}, errors.New("offer has no itineraries")
	}
	itinerary := raw.Itineraries[0]
	if len(itinerary.Segments) == 0 {
		return models.Offer{}, errors.New("itinerary has no segments")
	}

	segments := make([]models.Segment, len(itinerary.Segments))
	for i, s := range itinerary.Segments {
		segments[i] = models.Segment{
			Origin:      s.Departure.IATACode,
			Destination: s.Arrival.IATACode,
			DepartureAt: s.Departure.At,
			Duration:    s.Duration,
		}
	}

	return models.Offer{
		Currency: raw.Price.Currency,
		Total:    raw.Price.Total,
		Duration: itinerary.Duration,
		Segments: segments,
	}, nil
}

func decodeError(status int, body []byte) error {
	var payload amadeusErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		first := payload.Errors[0]
		return &ProviderError{
			Status: first.Status,
			Code:   first.Code,
			Title:  first.Title,
			Detail: first.Detail,
		}
	}
	return &ProviderError{Status: status, Title: http.StatusText(status)}
}
