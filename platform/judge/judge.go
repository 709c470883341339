// Package judge is the contract with the sandboxed code-execution service.
// Submitted code is never executed in this process; it is shipped to the
// collaborator together with the problem's test cases and comes back as a
// verdict.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/app/models"
)

type Language string

const (
	Python Language = "py"
	JS     Language = "js"
	CPP    Language = "cpp"
	Java   Language = "java"
)

func (l Language) Valid() bool {
	switch l {
	case Python, JS, CPP, Java:
		return true
	}
	return false
}

// Verdict is the collaborator's result for one submission. Passed is true only
// when every test case's output deep-equals its expected value.
type Verdict struct {
	Passed      bool   `json:"passed"`
	PassedCount int    `json:"passed_count"`
	TotalCount  int    `json:"total_count"`
	Error       string `json:"error,omitempty"`
}

// ErrUnavailable marks a collaborator failure (down, timed out, bad reply).
// Callers treat it as a failed submission, never as a crash.
var ErrUnavailable = errors.New("judging service unavailable")

type Evaluator interface {
	Evaluate(ctx context.Context, code string, lang Language, cases []models.TestCase) (Verdict, error)
}

// Client talks to the judging service over HTTP.
type Client struct {
	base string
	http *http.Client
}

func NewClient() *Client {
	return &Client{
		base: os.Getenv("JUDGE_URL"),
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

type evaluateRequest struct {
	Code      string            `json:"code"`
	Language  Language          `json:"language"`
	TestCases []models.TestCase `json:"test_cases"`
}

func (c *Client) Evaluate(ctx context.Context, code string, lang Language, cases []models.TestCase) (Verdict, error) {
	if !lang.Valid() {
		return Verdict{}, fmt.Errorf("unsupported language %q", lang)
	}
	body, err := json.Marshal(evaluateRequest{Code: code, Language: lang, TestCases: cases})
	if err != nil {
		return Verdict{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/evaluate", bytes.NewReader(body))
	if err != nil {
		return Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var v Verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return Verdict{}, fmt.Errorf("%w: bad verdict: %v", ErrUnavailable, err)
	}
	return v, nil
}
