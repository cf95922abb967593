// Package reportapi talks to the WeInfuse reporting API: token exchange,
// report handle discovery and query result download.
package reportapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin HTTP client over the reporting API. Endpoints and
// credentials come from the active connector config, not from env, so a
// config change takes effect on the next run without a redeploy.
type Client struct {
	tokenURL       string
	reportURL      string
	queryResultURL string
	clientId       string
	clientSecret   string
	http           *http.Client

	accessToken string
}

func NewClient(tokenURL, reportURL, queryResultURL, clientId, clientSecret string) (*Client, error) {
	if strings.TrimSpace(tokenURL) == "" || strings.TrimSpace(reportURL) == "" || strings.TrimSpace(queryResultURL) == "" {
		return nil, errors.New("report api endpoints are not configured")
	}
	if strings.TrimSpace(clientId) == "" || strings.TrimSpace(clientSecret) == "" {
		return nil, errors.New("report api credentials are not configured")
	}
	return &Client{
		tokenURL:       tokenURL,
		reportURL:      reportURL,
		queryResultURL: queryResultURL,
		clientId:       clientId,
		clientSecret:   clientSecret,
		http:           &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate exchanges the client credentials for a bearer token. The
// token endpoint takes client_id and client_secret as form fields only.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("client_id", c.clientId)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("token endpoint error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return err
	}
	if parsed.AccessToken == "" {
		return errors.New("token endpoint returned no access_token")
	}
	c.accessToken = parsed.AccessToken
	return nil
}

// ReportHandle identifies one saved report and the query to download it.
type ReportHandle struct {
	ReportId string `json:"report_id"`
	Name     string `json:"name"`
	QueryId  string `json:"query_id"`
}

// FetchReportHandle looks up one saved report by name. The report URL
// takes the name appended to its path and answers with a single handle.
func (c *Client) FetchReportHandle(ctx context.Context, reportName string) (ReportHandle, error) {
	if strings.TrimSpace(reportName) == "" {
		return ReportHandle{}, errors.New("report name is empty")
	}
	endpoint := c.reportURL + url.PathEscape(reportName)

	body, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return ReportHandle{}, err
	}

	var handle ReportHandle
	if err := json.Unmarshal(body, &handle); err != nil {
		return ReportHandle{}, err
	}
	if handle.QueryId == "" {
		return ReportHandle{}, fmt.Errorf("report %q has no query id", reportName)
	}
	return handle, nil
}

type queryResultResponse struct {
	Rows []map[string]interface{} `json:"rows"`
}

// FetchResults downloads the rows for one report query. The configured
// result URL carries a {queryId} placeholder.
func (c *Client) FetchResults(ctx context.Context, queryId string) ([]map[string]interface{}, error) {
	if queryId == "" {
		return nil, errors.New("query id is empty")
	}
	endpoint := strings.ReplaceAll(c.queryResultURL, "{queryId}", url.PathEscape(queryId))

	body, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var parsed queryResultResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Rows != nil {
		return parsed.Rows, nil
	}
	// Some deployments return the row array directly.
	var rows []map[string]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("query result is not a row set: %w", err)
	}
	return rows, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string) ([]byte, error) {
	if c.accessToken == "" {
		return nil, errors.New("not authenticated")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("report api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
