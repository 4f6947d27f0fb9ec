package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bonjohen/chess-metric-analyzer/internal/client/display"
	"github.com/bonjohen/chess-metric-analyzer/internal/core"
)

// Client talks to the visualization API and echoes every exchange to Out
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

type HealthResponse struct {
	Status   string `json:"status"`
	Time     int64  `json:"time"`
	Storage  string `json:"storage"`
	Sessions int    `json:"sessions"`
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Out: os.Stdout,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	url := c.BaseURL + path

	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	fmt.Fprintf(c.Out, "\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if bodyStr != "" {
		if c.Verbose {
			fmt.Fprintf(c.Out, "%sRequest Body:%s\n%s\n", display.Cyan, display.Reset, indent([]byte(bodyStr)))
		} else {
			fmt.Fprintf(c.Out, "%s%s%s\n", display.Blue, bodyStr, display.Reset)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		fmt.Fprintf(c.Out, "%s[ERROR] %s%s\n", display.Red, err.Error(), display.Reset)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Fprintf(c.Out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		fmt.Fprintf(c.Out, "%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, indent(respBody))
	}

	if resp.StatusCode >= 400 {
		var errResp core.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			msg := errResp.Error
			if errResp.Details != "" {
				msg += ": " + errResp.Details
			}
			return fmt.Errorf("%s (%s)", msg, errResp.Code)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			fmt.Fprintf(c.Out, "%sRaw response: %s%s\n", display.Green, string(respBody), display.Reset)
			return fmt.Errorf("response parse error: %w", err)
		}
	}

	return nil
}

func indent(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func sessionPath(id string) string {
	return "/api/v1/sessions/" + id
}

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateSession(req core.CreateSessionRequest) (*core.SessionView, error) {
	var resp core.SessionView
	err := c.doRequest("POST", "/api/v1/sessions", req, &resp)
	return &resp, err
}

func (c *Client) GetSession(id string) (*core.SessionView, error) {
	var resp core.SessionView
	err := c.doRequest("GET", sessionPath(id), nil, &resp)
	return &resp, err
}

// PollSession blocks server-side until the session moves past version
func (c *Client) PollSession(id string, version int) (*core.SessionView, error) {
	var resp core.SessionView
	err := c.doRequest("GET", fmt.Sprintf("%s?wait=true&version=%d", sessionPath(id), version), nil, &resp)
	return &resp, err
}

func (c *Client) DeleteSession(id string) error {
	return c.doRequest("DELETE", sessionPath(id), nil, nil)
}

func (c *Client) Click(id, square string) (*core.ClickResponse, error) {
	var resp core.ClickResponse
	err := c.doRequest("POST", sessionPath(id)+"/clicks", core.ClickRequest{Square: square}, &resp)
	return &resp, err
}

func (c *Client) LoadPosition(id, fen string) (*core.SessionView, error) {
	var resp core.SessionView
	err := c.doRequest("POST", sessionPath(id)+"/position", core.PositionRequest{FEN: fen}, &resp)
	return &resp, err
}

func (c *Client) SetPerspective(id, perspective string) (*core.SessionView, error) {
	var resp core.SessionView
	err := c.doRequest("PUT", sessionPath(id)+"/perspective", core.PerspectiveRequest{Perspective: perspective}, &resp)
	return &resp, err
}

func (c *Client) SetProfile(id, name string, save bool) (*core.SessionView, error) {
	var resp core.SessionView
	err := c.doRequest("PUT", sessionPath(id)+"/profile", core.ProfileRequest{Name: name, Save: save}, &resp)
	return &resp, err
}

func (c *Client) SetWeight(id, metric string, value float64) (*core.SessionView, error) {
	var resp core.SessionView
	err := c.doRequest("PUT", sessionPath(id)+"/weights", core.WeightRequest{Metric: metric, Value: &value}, &resp)
	return &resp, err
}

func (c *Client) SetPieceValue(id, piece string, value float64) (*core.SessionView, error) {
	var resp core.SessionView
	err := c.doRequest("PUT", sessionPath(id)+"/pieces", core.PieceValueRequest{Piece: piece, Value: &value}, &resp)
	return &resp, err
}

func (c *Client) StartAnalysis(id string) (*core.SessionView, error) {
	var resp core.SessionView
	err := c.doRequest("POST", sessionPath(id)+"/analysis", nil, &resp)
	return &resp, err
}

func (c *Client) StopAnalysis(id string) (*core.SessionView, error) {
	var resp core.SessionView
	err := c.doRequest("DELETE", sessionPath(id)+"/analysis", nil, &resp)
	return &resp, err
}

func (c *Client) RenderArrows(req core.ArrowsRequest) (*core.ArrowsResponse, error) {
	var resp core.ArrowsResponse
	err := c.doRequest("POST", "/api/v1/arrows", req, &resp)
	return &resp, err
}

func (c *Client) RenderOverlay(req core.OverlayRequest) (*core.OverlayResponse, error) {
	var resp core.OverlayResponse
	err := c.doRequest("POST", "/api/v1/overlay", req, &resp)
	return &resp, err
}

func (c *Client) RenderBoard(req core.BoardRequest) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.doRequest("POST", "/api/v1/board", req, &resp)
	return &resp, err
}

func (c *Client) ListProfiles() (*core.ProfilesResponse, error) {
	var resp core.ProfilesResponse
	err := c.doRequest("GET", "/api/v1/profiles", nil, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			bodyData = body
		}
	}
	var out any
	if err := c.doRequest(method, path, bodyData, &out); err != nil {
		return err
	}
	if !c.Verbose && out != nil {
		display.PrettyPrintJSON(c.Out, out)
	}
	return nil
}
