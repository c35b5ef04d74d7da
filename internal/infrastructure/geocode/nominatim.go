package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"

	"citywatch/internal/domain/service"
)

const defaultTimeout = 5 * time.Second

// NominatimClient reverse-geocodes against an OpenStreetMap Nominatim endpoint.
// A bounded timeout keeps a slow upstream from stalling the intake request.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNominatimClient(baseURL string) *NominatimClient {
	return &NominatimClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

var _ service.Geocoder = (*NominatimClient)(nil)

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

func (c *NominatimClient) ReverseGeocode(ctx context.Context, pt orb.Point) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(pt.Lat(), 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(pt.Lon(), 'f', -1, 64))

	endpoint := c.baseURL + "/reverse?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "citywatch/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var result reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.DisplayName, nil
}
