package rendezvous

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPDirectory talks to a rendezvous Server.
type HTTPDirectory struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *HTTPDirectory) Register(ctx context.Context, code, addr string) error {
	_, err := d.do(ctx, http.MethodPut, "/rooms/"+url.PathEscape(Normalize(code)), roomRequest{Address: addr})
	return err
}

// Claim asks the server to pick a free code for addr.
func (d *HTTPDirectory) Claim(ctx context.Context, addr string) (string, error) {
	resp, err := d.do(ctx, http.MethodPost, "/rooms", roomRequest{Address: addr})
	if err != nil {
		return "", err
	}
	return resp.Code, nil
}

func (d *HTTPDirectory) Resolve(ctx context.Context, code string) (string, error) {
	code = Normalize(code)
	if !Valid(code) {
		return "", ErrInvalidCode
	}
	resp, err := d.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(code), nil)
	if err != nil {
		return "", err
	}
	return resp.Address, nil
}

func (d *HTTPDirectory) Release(ctx context.Context, code string) error {
	_, err := d.do(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(Normalize(code)), nil)
	return err
}

func (d *HTTPDirectory) do(ctx context.Context, method, path string, body any) (roomResponse, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return roomResponse{}, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, d.BaseURL+path, reader)
	if err != nil {
		return roomResponse{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return roomResponse{}, fmt.Errorf("rendezvous %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var out roomResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return roomResponse{}, fmt.Errorf("decode rendezvous response: %w", err)
		}
		return out, nil
	case http.StatusNoContent:
		return roomResponse{}, nil
	case http.StatusNotFound:
		return roomResponse{}, ErrRoomNotFound
	case http.StatusConflict:
		return roomResponse{}, ErrRoomTaken
	case http.StatusBadRequest:
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" || e.Error == ErrInvalidCode.Error() {
			return roomResponse{}, ErrInvalidCode
		}
		return roomResponse{}, fmt.Errorf("rendezvous %s %s: %s", method, path, e.Error)
	default:
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return roomResponse{}, fmt.Errorf("rendezvous %s %s: status %d %s", method, path, resp.StatusCode, e.Error)
	}
}
