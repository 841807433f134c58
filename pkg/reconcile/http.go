package reconcile

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/opsforge/state-reconciler/pkg/types"
)

const (
	// HTTP backend type.
	HTTPBackendType string = "http"
)

type (
	// HTTPBackend implements a REST API backend.
	HTTPBackend struct {
		// Reconciler configuration.
		Config *Config
		// Reconciler logger.
		Logger types.Logger
		// HTTP client.
		Client *http.Client
		// Base URL of the remote API, after endpoint discovery.
		Endpoint string
	}
)

// url produces the request URL for a resource identifier or kind.
func (h *HTTPBackend) url(path string) string {
	return strings.TrimSuffix(h.Endpoint, "/") + "/" + strings.Trim(path, "/")
}

// request performs a single API call and returns the response body.
// A nil body is returned for responses without content.
func (h *HTTPBackend) request(method string, url string, payload interface{}) ([]byte, int, error) {
	cfg := h.Config
	var reqBody io.Reader

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, errors.Wrap(err, "representation encoding failure")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, 0, errors.Wrap(err, "api request failure")
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(cfg.HTTP.Token) > 0 {
		req.Header.Set("Authorization", "Bearer "+cfg.HTTP.Token)
	}

	h.Logger.Debugf("[%s] %s", method, url)

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "api request failure")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "api response read failure")
	}

	return respBody, resp.StatusCode, nil
}

// decode unmarshals an API response body into a resource representation.
func (h *HTTPBackend) decode(body []byte) (map[string]interface{}, error) {
	if len(body) == 0 {
		return nil, nil
	}

	repr := make(map[string]interface{})
	if err := json.Unmarshal(body, &repr); err != nil {
		return nil, errors.Wrap(err, "representation decoding failure")
	}

	return repr, nil
}

// Get returns the current representation of a resource or nil if it does not exist.
func (h *HTTPBackend) Get(id string) (map[string]interface{}, error) {
	body, status, err := h.request(http.MethodGet, h.url(id), nil)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, nil
	case status >= 300:
		return nil, errors.Errorf("unexpected api response status: %d", status)
	}

	return h.decode(body)
}

// List returns the representations of all resources of a kind.
func (h *HTTPBackend) List(kind string) ([]map[string]interface{}, error) {
	body, status, err := h.request(http.MethodGet, h.url(kind), nil)
	if err != nil {
		return nil, err
	}

	if status >= 300 {
		return nil, errors.Errorf("unexpected api response status: %d", status)
	}

	reprs := make([]map[string]interface{}, 0)
	if err := json.Unmarshal(body, &reprs); err != nil {
		return nil, errors.Wrap(err, "representation decoding failure")
	}

	return reprs, nil
}

// Create creates a resource and returns its resulting representation.
func (h *HTTPBackend) Create(id string, repr map[string]interface{}) (map[string]interface{}, error) {
	body, status, err := h.request(http.MethodPost, h.url(id), repr)
	if err != nil {
		return nil, err
	}

	if status >= 300 {
		return nil, errors.Errorf("unexpected api response status: %d", status)
	}

	created, err := h.decode(body)
	if err != nil {
		return nil, err
	}

	// Some APIs respond to creation with an empty body.
	if created == nil {
		return repr, nil
	}

	return created, nil
}

// Update updates a resource and returns its resulting representation.
func (h *HTTPBackend) Update(id string, repr map[string]interface{}) (map[string]interface{}, error) {
	body, status, err := h.request(http.MethodPut, h.url(id), repr)
	if err != nil {
		return nil, err
	}

	if status >= 300 {
		return nil, errors.Errorf("unexpected api response status: %d", status)
	}

	updated, err := h.decode(body)
	if err != nil {
		return nil, err
	}

	if updated == nil {
		return repr, nil
	}

	return updated, nil
}

// Delete deletes a resource.
func (h *HTTPBackend) Delete(id string) error {
	_, status, err := h.request(http.MethodDelete, h.url(id), nil)
	if err != nil {
		return err
	}

	if status >= 300 && status != http.StatusNotFound {
		return errors.Errorf("unexpected api response status: %d", status)
	}

	return nil
}

// Close shuts down the backend and performs other housekeeping.
func (h *HTTPBackend) Close() {
	h.Client.CloseIdleConnections()
}

// NewHTTPBackend creates a REST API backend.
func NewHTTPBackend(cfg *Config) (*HTTPBackend, error) {
	transport := &http.Transport{}

	if cfg.HTTP.TLS.Enabled {
		tlsCfg, err := tlsSetup(&cfg.HTTP.TLS)
		if err != nil {
			return nil, errors.Wrap(err, "http backend TLS initialization failure")
		}

		transport.TLSClientConfig = tlsCfg
	}

	endpoint, err := resolveEndpoint(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "http backend initialization failure")
	}

	return &HTTPBackend{
		Config: cfg,
		Logger: cfg.Logger,
		Client: &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: transport,
		},
		Endpoint: endpoint,
	}, nil
}
