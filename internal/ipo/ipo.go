// Package ipo looks up IPO allotment metadata for the importer's placeholder
// backfill. The lookup is best effort: a failed or empty response leaves the
// placeholder values in place rather than failing an import.
package ipo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Info is one IPO's allotment metadata. AllotmentPrice and ListingDate are
// pointers because the source frequently has one without the other.
type Info struct {
	Symbol         string     `json:"symbol"`
	Company        string     `json:"company"`
	AllotmentPrice *float64   `json:"allotmentPrice"`
	ListingDate    *time.Time `json:"listingDate"`
	ListingPrice   *float64   `json:"listingPrice"`
}

// Service defines the IPO metadata lookup consumed by the importer.
type Service interface {
	GetIPOInfo(ctx context.Context, symbols []string, year int) ([]Info, error)
}

// Client fetches IPO metadata from an HTTP JSON endpoint exposing the
// mainboard IPO list per year. When the requested year yields no matches it
// walks back up to four previous years, since allotments often predate the
// sell that surfaced them.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new IPO metadata client for the given endpoint.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
}

type infoRequest struct {
	Symbols []string `json:"symbols"`
	Year    int      `json:"year"`
}

type infoResponse struct {
	IPOs []struct {
		Symbol         string   `json:"symbol"`
		Company        string   `json:"company"`
		AllotmentPrice *float64 `json:"allotmentPrice"`
		ListingDate    *string  `json:"listingDate"`
		ListingPrice   *float64 `json:"listingPrice"`
	} `json:"ipos"`
	Error string `json:"error"`
}

// GetIPOInfo returns allotment metadata for the requested symbols, matching
// case-insensitively. Returns an empty slice, not an error, when nothing
// matches any probed year.
func (c *Client) GetIPOInfo(ctx context.Context, symbols []string, year int) ([]Info, error) {
	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[strings.ToUpper(s)] = true
	}

	matched := []Info{}
	for y := year; y >= year-4 && y > 2020; y-- {
		infos, err := c.fetchYear(ctx, symbols, y)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			if wanted[strings.ToUpper(info.Symbol)] {
				matched = append(matched, info)
				delete(wanted, strings.ToUpper(info.Symbol))
			}
		}
		if len(wanted) == 0 {
			break
		}
	}

	return matched, nil
}

func (c *Client) fetchYear(ctx context.Context, symbols []string, year int) ([]Info, error) {
	body, err := json.Marshal(infoRequest{Symbols: symbols, Year: year})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response infoResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}
	if response.Error != "" {
		return nil, fmt.Errorf("ipo service error: %s", response.Error)
	}

	infos := make([]Info, 0, len(response.IPOs))
	for _, raw := range response.IPOs {
		info := Info{
			Symbol:         strings.ToUpper(raw.Symbol),
			Company:        raw.Company,
			AllotmentPrice: raw.AllotmentPrice,
			ListingPrice:   raw.ListingPrice,
		}
		if raw.ListingDate != nil {
			if d, err := time.Parse("2006-01-02", *raw.ListingDate); err == nil {
				info.ListingDate = &d
			}
		}
		infos = append(infos, info)
	}

	return infos, nil
}
