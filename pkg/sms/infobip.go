package sms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type InfobipClient struct {
	baseURL    string
	apiKey     string
	sender     string
	httpClient *http.Client
}

type infobipDestination struct {
	To string `json:"to"`
}

type infobipMessage struct {
	Destinations []infobipDestination `json:"destinations"`
	From         string               `json:"from"`
	Text         string               `json:"text"`
}

type infobipSendRequest struct {
	Messages []infobipMessage `json:"messages"`
}

func NewInfobipClient(baseURL, apiKey, sender string, httpClient *http.Client) *InfobipClient {
	client := httpClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &InfobipClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		sender:     strings.TrimSpace(sender),
		httpClient: client,
	}
}

var _ Sender = (*InfobipClient)(nil)

func (c *InfobipClient) Send(to, body string) error {
	if c == nil {
		return errors.New("sms client is nil")
	}
	if c.apiKey == "" {
		return errors.New("sms api key is empty")
	}

	to = strings.TrimPrefix(strings.TrimSpace(to), "+")
	if to == "" {
		return errors.New("recipient number is required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("message is empty")
	}

	payload, err := json.Marshal(infobipSendRequest{
		Messages: []infobipMessage{{
			Destinations: []infobipDestination{{To: to}},
			From:         c.sender,
			Text:         body,
		}},
	})
	if err != nil {
		return err
	}

	endpointURL, err := url.Parse(c.baseURL + "/sms/2/text/advanced")
	if err != nil {
		return err
	}
	if !strings.EqualFold(endpointURL.Scheme, "https") {
		return errors.New("sms api endpoint must use https")
	}

	req, err := http.NewRequest(http.MethodPost, endpointURL.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "App "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("infobip returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
