package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/mediastats/internal/shared"
)

const (
	headerToken      = "X-Plex-Token"
	headerClientID   = "X-Plex-Client-Identifier"
	headerProduct    = "X-Plex-Product"
	headerVersion    = "X-Plex-Version"
	headerServerURL  = "X-Plex-Server-URL"
	contentTypeJSON  = "application/json"
	maxResponseBytes = 32 << 20
)

// Image is relayed thumbnail bytes with the upstream content type.
type Image struct {
	ContentType string
	Data        []byte
}

// decodeResponse reads resp and decodes a 2xx JSON body into v.
//
// Any other status becomes a [shared.UpstreamError] carrying the response payload.
func decodeResponse(op string, resp *http.Response, v any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return shared.TransportError(op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shared.NewUpstreamError(op, resp.StatusCode, body)
	}

	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &shared.UpstreamError{Operation: op, Status: resp.StatusCode, Details: fmt.Sprintf("failed to decode response: %v", err)}
	}
	return nil
}

// readImage reads an image body, failing on non-2xx statuses.
func readImage(op string, resp *http.Response) (*Image, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, shared.TransportError(op, fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, shared.NewUpstreamError(op, resp.StatusCode, body)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return &Image{ContentType: contentType, Data: body}, nil
}

// FlexInt accepts a JSON number or a numeric string.
//
// Values that do not parse decode as zero.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt(n)
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexInt(int64(n))
		return nil
	}

	*f = FlexInt(leadingDigits(s))
	return nil
}

// leadingDigits parses the numeric prefix of s, or zero when there is none.
func leadingDigits(s string) int64 {
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && s[end] == '-') {
		end++
	}
	n, _ := strconv.ParseInt(s[:end], 10, 64)
	return n
}

// FlexBool accepts a JSON boolean, a number, or a string. Non-zero numbers and "true" are true.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "", "null", "false", "0":
		*f = false
	case "true", "1":
		*f = true
	default:
		n, err := strconv.ParseFloat(s, 64)
		*f = FlexBool(err == nil && n != 0)
	}
	return nil
}
