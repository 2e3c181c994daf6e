// Package owo uploads long text to a pomf compatible paste host.
package owo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const (
	DefaultEndpoint   = "https://api.awau.moe/upload/pomf"
	DefaultResultBase = "https://chito.ge/"
)

type Result struct {
	Success     bool   `json:"success"`
	Description string `json:"description"`
	Files       []struct {
		Hash string `json:"hash"`
		Name string `json:"name"`
		URL  string `json:"url"`
		Size int    `json:"size"`
	} `json:"files"`
}

type Client struct {
	token      string
	endpoint   string
	resultBase string
	client     *http.Client
}

// NewClient creates an uploader. Empty endpoint or result base fall back to
// the defaults.
func NewClient(token, endpoint, resultBase string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if resultBase == "" {
		resultBase = DefaultResultBase
	}
	return &Client{
		token:      token,
		endpoint:   endpoint,
		resultBase: resultBase,
		client:     &http.Client{},
	}
}

// Upload posts text as a file and returns its public link.
func (o *Client) Upload(ctx context.Context, filename, text string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files[]"; filename=%q`, filename))
	h.Set("Content-Type", "text/plain;charset=utf-8")

	part, err := writer.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err = part.Write([]byte(text)); err != nil {
		return "", err
	}
	if err = writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", o.token)

	res, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	result := Result{}
	if err = json.NewDecoder(res.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload result (%v): %w", res.Status, err)
	}
	if !result.Success {
		if result.Description == "" {
			result.Description = "upload failed: " + res.Status
		}
		return "", errors.New(result.Description)
	}
	if len(result.Files) == 0 {
		return "", errors.New("upload returned no files")
	}
	return strings.TrimSuffix(o.resultBase, "/") + "/" + strings.TrimPrefix(result.Files[0].URL, "/"), nil
}
