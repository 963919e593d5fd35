package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/user/advisory-service/internal/entity"
)

// Client talks to a hosted PostgREST endpoint such as Supabase. It implements
// repository.TableWriter and repository.CountryReader.
type Client struct {
	http *resty.Client
}

// New builds a client for baseURL authenticated with the project key. Neither is validated.
func New(baseURL, key string) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/") + "/rest/v1")
	client.SetHeader("apikey", key)
	client.SetAuthToken(key)
	client.SetTimeout(time.Second * 30)
	return &Client{http: client}
}

// Insert posts one row and returns the representation sent back by the server.
func (c *Client) Insert(ctx context.Context, table string, row entity.Row) ([]entity.Row, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation").
		SetBody(row).
		Post("/" + url.PathEscape(table))
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("%s: %s", res.Status(), strings.TrimSpace(res.String()))
	}
	return decodeRows(res.Body())
}

// Children selects the rows of table whose country_id matches.
func (c *Client) Children(ctx context.Context, table, countryID string) ([]entity.Row, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("country_id", "eq."+countryID).
		Get("/" + url.PathEscape(table))
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("%s: %s", res.Status(), strings.TrimSpace(res.String()))
	}
	return decodeRows(res.Body())
}

func decodeRows(body []byte) ([]entity.Row, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var rows []entity.Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}
