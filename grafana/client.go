package grafana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rscampini/grafana-orgsync/metrics"
)

const (
	fallbackSearch = "Cannot search organization"
	fallbackCreate = "Organization could not be created"
	fallbackDelete = "Organization could not be deleted"

	msgExists = "Organization exists"
)

// Client talks to the Grafana organization API.
type Client interface {
	Lookup(ctx context.Context, name string) (Org, error)
	Create(ctx context.Context, name string) (Org, error)
	Delete(ctx context.Context, name string, id int64) (Org, error)
}

type Httper interface {
	Do(req *http.Request) (*http.Response, error)
}

type client struct {
	baseURL  string
	username string
	password string
	http     Httper
	metrics  *metrics.Metrics
}

func New(baseURL, username, password string, metrics *metrics.Metrics) Client {
	return &client{
		baseURL:  baseURL,
		username: username,
		password: password,
		http:     &http.Client{},
		metrics:  metrics,
	}
}

// Lookup searches for an organization by exact, case-sensitive name. A
// connection-level failure is absorbed as "not found" rather than returned as
// an error; see absorbed.
func (c *client) Lookup(ctx context.Context, name string) (Org, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/api/orgs/name/"+url.PathEscape(name), nil)
	if err != nil {
		return Org{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.IncAPIRequest("read", false)
		return c.absorbed(name, fallbackSearch, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, err := c.errorMessage(resp.Body, fallbackSearch)
		if err != nil {
			c.metrics.IncAPIRequest("read", false)
			return Org{}, err
		}
		c.metrics.IncAPIRequest("read", false)
		return Org{ID: NotFound, Name: name, Status: resp.StatusCode, Message: msg}, nil
	}

	var body orgBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.IncAPIRequest("read", false)
		return Org{}, fmt.Errorf("parse organization lookup response, err=%w", err)
	}
	c.metrics.IncAPIRequest("read", true)
	return Org{ID: body.ID, Name: body.Name, Status: resp.StatusCode, Message: msgExists}, nil
}

// Create registers a new organization. It carries no idempotence guarantee of
// its own; callers only invoke it after Lookup reported absence.
func (c *client) Create(ctx context.Context, name string) (Org, error) {
	payload, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return Org{}, fmt.Errorf("encode organization payload, err=%w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/api/orgs", bytes.NewReader(payload))
	if err != nil {
		return Org{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.IncAPIRequest("create", false)
		return c.absorbed(name, fallbackCreate, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, err := c.errorMessage(resp.Body, fallbackCreate)
		if err != nil {
			c.metrics.IncAPIRequest("create", false)
			return Org{}, err
		}
		c.metrics.IncAPIRequest("create", false)
		return Org{ID: NotFound, Name: name, Status: resp.StatusCode, Message: msg}, nil
	}

	var body createBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.IncAPIRequest("create", false)
		return Org{}, fmt.Errorf("parse organization create response, err=%w", err)
	}
	c.metrics.IncAPIRequest("create", true)
	return Org{ID: body.OrgID, Name: name, Status: resp.StatusCode, Message: body.Message}, nil
}

// Delete removes the organization addressed by id.
func (c *client) Delete(ctx context.Context, name string, id int64) (Org, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, c.baseURL+"/api/orgs/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return Org{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.IncAPIRequest("delete", false)
		return c.absorbed(name, fallbackDelete, err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, err := c.errorMessage(resp.Body, fallbackDelete)
		if err != nil {
			c.metrics.IncAPIRequest("delete", false)
			return Org{}, err
		}
		c.metrics.IncAPIRequest("delete", false)
		return Org{ID: NotFound, Name: name, Status: resp.StatusCode, Message: msg}, nil
	}

	var body messageBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.IncAPIRequest("delete", false)
		return Org{}, fmt.Errorf("parse organization delete response, err=%w", err)
	}
	c.metrics.IncAPIRequest("delete", true)
	return Org{ID: id, Name: name, Status: resp.StatusCode, Message: body.Message}, nil
}

func (c *client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build grafana api request, err=%w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf8")
	req.SetBasicAuth(c.username, c.password)
	return req, nil
}

// absorbed folds a transport-level failure into a "not found" observation.
// This keeps a flaky network indistinguishable from a missing organization,
// which callers rely on. Splitting the two outcomes later only requires
// changing this one spot.
func (c *client) absorbed(name, fallback string, err error) Org {
	slog.Warn("Grafana request failed, treating organization as absent", "name", name, "error", err)
	return Org{ID: NotFound, Name: name, Status: 0, Message: fallback}
}

// errorMessage extracts the message field from a non-200 response body. An
// empty body or a body without a message yields the fallback; a non-empty
// body that is not JSON is a hard error.
func (c *client) errorMessage(r io.Reader, fallback string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read grafana api response, err=%w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fallback, nil
	}
	var body messageBody
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("parse grafana api error response, err=%w", err)
	}
	if body.Message == "" {
		return fallback, nil
	}
	return body.Message, nil
}
