// Package dialecttts talks to a hosted Gradio speech service that renders
// Swiss German dialect audio.
package dialecttts

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lessonlab/pkg/config"
	"lessonlab/pkg/tracker"
	"lessonlab/pkg/tts"
)

const trackerLabel = "dialect-tts"

// Client implements tts.Client against a Gradio prediction endpoint.
type Client struct {
	baseURL string
	apiName string
	client  *http.Client
	tracker *tracker.Tracker
}

// NewClient constructs a Client and probes the service configuration endpoint
// so that an unreachable or misconfigured service fails at construction time.
// When verify is false, TLS certificate validation is skipped.
func NewClient(ctx context.Context, cfg config.TTSConfig, verify bool, t *tracker.Tracker) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("dialect TTS base URL is not configured")
	}
	apiName := strings.Trim(cfg.APIName, "/")
	if apiName == "" {
		return nil, fmt.Errorf("dialect TTS api name is not configured")
	}

	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		apiName: apiName,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: !verify},
			},
		},
		tracker: t,
	}

	if err := c.probe(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// probe fetches the Gradio app config to confirm the service is reachable.
func (c *Client) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"config", nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("service probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service probe returned status %d", resp.StatusCode)
	}
	return nil
}

type predictRequest struct {
	Data []any `json:"data"`
}

type predictResponse struct {
	Data []json.RawMessage `json:"data"`
}

// fileData is the shape Gradio uses for file outputs.
type fileData struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Synthesize asks the remote service to render text in the given dialect and
// resolves the result to a local audio file.
func (c *Client) Synthesize(ctx context.Context, text, dialect string) (tts.Result, error) {
	payload, err := json.Marshal(predictRequest{Data: []any{text, dialect}})
	if err != nil {
		return tts.Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.baseURL + "run/" + c.apiName
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return tts.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if c.tracker != nil {
			c.tracker.TrackAPIFailure(trackerLabel)
		}
		return tts.Result{}, fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if c.tracker != nil {
			c.tracker.TrackAPIFailure(trackerLabel)
		}
		return tts.Result{}, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var pred predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		if c.tracker != nil {
			c.tracker.TrackAPIFailure(trackerLabel)
		}
		return tts.Result{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(pred.Data) == 0 {
		return tts.Result{}, fmt.Errorf("empty prediction result")
	}

	result, err := c.resolve(ctx, pred.Data[0])
	if err != nil {
		return tts.Result{}, err
	}

	if c.tracker != nil {
		c.tracker.TrackAPISuccess(trackerLabel)
	}
	return result, nil
}

// resolve turns the first prediction output into a local file. String outputs
// are treated as paths on a shared filesystem; file objects are downloaded
// into a temp file that the caller must remove.
func (c *Client) resolve(ctx context.Context, raw json.RawMessage) (tts.Result, error) {
	var path string
	if err := json.Unmarshal(raw, &path); err == nil {
		if path == "" {
			return tts.Result{}, fmt.Errorf("prediction returned an empty path")
		}
		return tts.Result{Path: path}, nil
	}

	var fd fileData
	if err := json.Unmarshal(raw, &fd); err != nil {
		return tts.Result{}, fmt.Errorf("unexpected prediction output: %s", string(raw))
	}
	if fd.URL != "" {
		return c.download(ctx, fd.URL)
	}
	if fd.Path != "" {
		return tts.Result{Path: fd.Path}, nil
	}
	return tts.Result{}, fmt.Errorf("prediction output carries no path or url")
}

// download fetches a remote audio file into the system temp directory.
func (c *Client) download(ctx context.Context, url string) (tts.Result, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return tts.Result{}, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return tts.Result{}, fmt.Errorf("audio download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tts.Result{}, fmt.Errorf("audio download returned status %d", resp.StatusCode)
	}

	ext := filepath.Ext(url)
	if ext == "" {
		ext = ".wav"
	}
	path := filepath.Join(os.TempDir(), "tts-"+uuid.New().String()+ext)

	f, err := os.Create(path)
	if err != nil {
		return tts.Result{}, fmt.Errorf("failed to create audio file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return tts.Result{}, fmt.Errorf("failed to write audio file: %w", err)
	}
	return tts.Result{Path: path, Temp: true}, nil
}
