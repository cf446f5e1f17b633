package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"codearena/internal/common"
	"codearena/internal/domain/model"
)

// Client talks to the external judging service. The service is called with
// wait=true and blocks until execution finishes, so a single synchronous
// round trip yields the completed result. The client holds no submission
// state.
type Client struct {
	url     string
	apiKey  string
	apiHost string
	http    *http.Client
}

func NewClient(url, apiKey, apiHost string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		apiKey:  apiKey,
		apiHost: apiHost,
		http:    &http.Client{Timeout: timeout},
	}
}

// Result is one completed judging run.
type Result struct {
	Stdout            string
	Stderr            string
	StatusDescription string
	TimeSec           *float64
	MemoryKB          *float64
}

// TimeMillis renders elapsed time in milliseconds, or the unknown
// placeholder when the service reported none.
func (r *Result) TimeMillis() string {
	if r.TimeSec == nil {
		return model.MetricUnknown
	}
	return strconv.FormatFloat(*r.TimeSec*1000, 'f', -1, 64)
}

// MemoryString renders memory usage in kilobytes, or the unknown placeholder.
func (r *Result) MemoryString() string {
	if r.MemoryKB == nil {
		return model.MetricUnknown
	}
	return strconv.FormatFloat(*r.MemoryKB, 'f', -1, 64)
}

// Output returns stdout if any, falling back to stderr.
func (r *Result) Output() string {
	if r.Stdout != "" {
		return r.Stdout
	}
	return r.Stderr
}

type judgeRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type judgeResponse struct {
	Stdout *string  `json:"stdout"`
	Stderr *string  `json:"stderr"`
	Time   *string  `json:"time"`
	Memory *float64 `json:"memory"`
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

// Execute runs source against stdin for the given external language id.
// Network failures, timeouts and non-success responses all surface as
// ErrJudgeUnavailable; the caller decides whether to retry.
func (c *Client) Execute(ctx context.Context, languageID int, source, stdin string) (*Result, error) {
	body, err := json.Marshal(judgeRequest{
		SourceCode: source,
		LanguageID: languageID,
		Stdin:      stdin,
	})
	if err != nil {
		return nil, fmt.Errorf("judge.Client.Execute marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("judge.Client.Execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judging service call failed: %v: %w", err, common.ErrJudgeUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("judging service returned status %d: %w", resp.StatusCode, common.ErrJudgeUnavailable)
	}

	var jr judgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		return nil, fmt.Errorf("judging service response malformed: %v: %w", err, common.ErrJudgeUnavailable)
	}

	res := &Result{
		StatusDescription: jr.Status.Description,
		MemoryKB:          jr.Memory,
	}
	if jr.Stdout != nil {
		res.Stdout = *jr.Stdout
	}
	if jr.Stderr != nil {
		res.Stderr = *jr.Stderr
	}
	if jr.Time != nil {
		if sec, err := strconv.ParseFloat(*jr.Time, 64); err == nil {
			res.TimeSec = &sec
		}
	}
	return res, nil
}
