// Package newsapi fetches headlines from the external news providers that
// feed the cached-news table: newsdata.io for the latest feed and
// thenewsapi.com for per-category pulls.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultNewsDataURL = "https://newsdata.io/api/1/latest"
	defaultTheNewsURL  = "https://api.thenewsapi.com/v1/news/all"
)

// Item is a provider-agnostic headline.
type Item struct {
	ID          string
	Title       string
	PhotoURL    string
	Link        string
	Description string
}

type Client struct {
	HTTPClient  *http.Client
	NewsDataKey string
	TheNewsKey  string

	// Endpoint overrides, used by tests.
	NewsDataURL string
	TheNewsURL  string
}

func NewClient(newsDataKey, theNewsKey string) *Client {
	return &Client{
		HTTPClient:  &http.Client{Timeout: 15 * time.Second},
		NewsDataKey: newsDataKey,
		TheNewsKey:  theNewsKey,
		NewsDataURL: defaultNewsDataURL,
		TheNewsURL:  defaultTheNewsURL,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("newsapi: request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("newsapi: unexpected status %s", res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// Latest pulls the current headline feed from newsdata.io.
func (c *Client) Latest(ctx context.Context) ([]Item, error) {
	params := url.Values{}
	params.Set("apikey", c.NewsDataKey)
	params.Set("country", "in")
	params.Set("language", "en")

	var body struct {
		Results []struct {
			ArticleID   string `json:"article_id"`
			Title       string `json:"title"`
			ImageURL    string `json:"image_url"`
			Link        string `json:"link"`
			Description string `json:"description"`
		} `json:"results"`
	}
	if err := c.get(ctx, c.NewsDataURL, params, &body); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(body.Results))
	for _, r := range body.Results {
		if r.ArticleID == "" || r.Title == "" {
			continue
		}
		items = append(items, Item{
			ID:          r.ArticleID,
			Title:       r.Title,
			PhotoURL:    r.ImageURL,
			Link:        r.Link,
			Description: r.Description,
		})
	}
	return items, nil
}

func (c *Client) theNews(ctx context.Context, params url.Values) ([]Item, error) {
	var body struct {
		Data []struct {
			UUID        string `json:"uuid"`
			Title       string `json:"title"`
			ImageURL    string `json:"image_url"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"data"`
	}
	if err := c.get(ctx, c.TheNewsURL, params, &body); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(body.Data))
	for _, d := range body.Data {
		if d.UUID == "" || d.Title == "" {
			continue
		}
		items = append(items, Item{
			ID:          d.UUID,
			Title:       d.Title,
			PhotoURL:    d.ImageURL,
			Link:        d.URL,
			Description: d.Description,
		})
	}
	return items, nil
}

// ByCategory pulls a category feed from thenewsapi.com, falling back from a
// locale-scoped category query to a locale-scoped keyword search and finally
// to a global keyword search when earlier attempts come back empty.
func (c *Client) ByCategory(ctx context.Context, category string) ([]Item, error) {
	base := url.Values{}
	base.Set("api_token", c.TheNewsKey)
	base.Set("language", "en")
	base.Set("limit", "20")

	withLocaleCat := url.Values{}
	for k, v := range base {
		withLocaleCat[k] = v
	}
	withLocaleCat.Set("locale", "in")
	withLocaleCat.Set("categories", category)

	items, err := c.theNews(ctx, withLocaleCat)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	withLocaleSearch := url.Values{}
	for k, v := range base {
		withLocaleSearch[k] = v
	}
	withLocaleSearch.Set("locale", "in")
	withLocaleSearch.Set("search", category)

	items, err = c.theNews(ctx, withLocaleSearch)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	global := url.Values{}
	for k, v := range base {
		global[k] = v
	}
	global.Set("search", category)

	return c.theNews(ctx, global)
}
