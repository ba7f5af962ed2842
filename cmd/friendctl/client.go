package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/memoryfriend/memory-friend/server/internal/auth"
)

func newClient() *resty.Client {
	c := resty.New().SetBaseURL(apiFlag)
	if tokenFlag != "" {
		c.SetCookie(&http.Cookie{Name: auth.SessionCookie, Value: tokenFlag})
	}
	return c
}

func checkAndPrint(resp *resty.Response, err error, out io.Writer) error {
	if err != nil {
		return err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, err = fmt.Fprintln(out, resp.String())
	return err
}

func runAddMemory(c *resty.Client, elderID, text, memType string, out io.Writer) error {
	payload := map[string]interface{}{"elderId": elderID, "rawText": text}
	if memType != "" {
		payload["type"] = memType
	}
	resp, err := c.R().SetBody(payload).Post("/api/memories")
	return checkAndPrint(resp, err, out)
}

func runListMemories(c *resty.Client, elderID, memType, tag string, limit int, out io.Writer) error {
	req := c.R().SetQueryParam("limit", fmt.Sprintf("%d", limit))
	if elderID != "" {
		req.SetQueryParam("elderId", elderID)
	}
	if memType != "" {
		req.SetQueryParam("type", memType)
	}
	if tag != "" {
		req.SetQueryParam("tag", tag)
	}
	resp, err := req.Get("/api/memories")
	return checkAndPrint(resp, err, out)
}

func runAsk(c *resty.Client, elderID, question string, out io.Writer) error {
	payload := map[string]interface{}{"question": question}
	if elderID != "" {
		payload["elderId"] = elderID
	}
	resp, err := c.R().SetBody(payload).Post("/api/questions")
	return checkAndPrint(resp, err, out)
}

func runDailySummary(c *resty.Client, elderID, date string, out io.Writer) error {
	req := c.R()
	if elderID != "" {
		req.SetQueryParam("elderId", elderID)
	}
	if date != "" {
		req.SetQueryParam("date", date)
	}
	resp, err := req.Get("/api/summaries/daily")
	return checkAndPrint(resp, err, out)
}

func runLinkElder(c *resty.Client, elderEmail string, out io.Writer) error {
	resp, err := c.R().
		SetBody(map[string]interface{}{"elderEmail": elderEmail}).
		Post("/api/caregivers/link-elder")
	return checkAndPrint(resp, err, out)
}

func runCurrentElder(c *resty.Client, elderID string, out io.Writer) error {
	req := c.R()
	if elderID != "" {
		req.SetQueryParam("elderId", elderID)
	}
	resp, err := req.Get("/api/current-elder")
	return checkAndPrint(resp, err, out)
}
