package probe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// predictRequest is one telemetry payload on the wire.
type predictRequest struct {
	Bytes    float64 `json:"bytes"`
	Protocol string  `json:"protocol"`
	Entropy  float64 `json:"entropy"`
	DstPort  int     `json:"dst_port"`
	ID       string  `json:"id"`
}

// predictResponse is the scoring answer.
type predictResponse struct {
	Score float64 `json:"score"`
	ID    any     `json:"id"`
}

// predictFailure is the error shape for 5xx scoring answers.
type predictFailure struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// modelHealth mirrors the forcing health probe answer.
type modelHealth struct {
	OK          bool     `json:"ok"`
	ModelLoaded bool     `json:"modelLoaded"`
	ModelError  *string  `json:"modelError"`
	ModelType   *string  `json:"modelType"`
	ModelPath   string   `json:"modelPath"`
	Threshold   *float64 `json:"threshold"`
}

// checkModel forces a model load on the target and reports the result.
func (c *HTTPClient) checkModel(baseURL string) (modelHealth, error) {
	var mh modelHealth

	resp, err := c.Get(baseURL + "/health/model")
	if err != nil {
		return mh, fmt.Errorf("model health request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return mh, fmt.Errorf("failed to read model health response: %w", err)
	}

	if err := json.Unmarshal(body, &mh); err != nil {
		return mh, fmt.Errorf("failed to parse model health response: %w", err)
	}
	return mh, nil
}

// predict scores one payload and returns the raw decision value.
func (c *HTTPClient) predict(baseURL string, req predictRequest) (float64, error) {
	resp, err := c.Post(baseURL+"/predict", req)
	if err != nil {
		return 0, fmt.Errorf("predict request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return 0, fmt.Errorf("failed to read predict response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var pf predictFailure
		if err := json.Unmarshal(body, &pf); err == nil && pf.Error != "" {
			if pf.Details != "" {
				return 0, fmt.Errorf("predict returned %d: %s: %s", resp.StatusCode, pf.Error, pf.Details)
			}
			return 0, fmt.Errorf("predict returned %d: %s", resp.StatusCode, pf.Error)
		}
		return 0, fmt.Errorf("predict returned %d", resp.StatusCode)
	}

	var pr predictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return 0, fmt.Errorf("failed to parse predict response: %w", err)
	}
	return pr.Score, nil
}
