package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/dfarm/internal/config"
	"github.com/mamadbah2/dfarm/internal/domain/models"
)

// Resource names a collection exposed by the content API.
type Resource string

const (
	ResourceAnimals  Resource = "animals"
	ResourceExpenses Resource = "expenses"
)

// ErrMissingToken is returned when a call is attempted without a bearer token.
var ErrMissingToken = errors.New("no authentication token provided")

// ErrNoCurrentUser indicates the token did not resolve to a user profile.
var ErrNoCurrentUser = errors.New("current user could not be resolved")

// Gateway is the CRUD contract over the remote resources. Payloads are
// returned undecoded.
type Gateway interface {
	List(ctx context.Context, sess models.Session, resource Resource, params ListParams) ([]json.RawMessage, error)
	Get(ctx context.Context, sess models.Session, resource Resource, id int) (json.RawMessage, error)
	Create(ctx context.Context, sess models.Session, resource Resource, payload any) (json.RawMessage, error)
	Update(ctx context.Context, sess models.Session, resource Resource, id int, payload any) (json.RawMessage, error)
	Delete(ctx context.Context, sess models.Session, resource Resource, id int) error
}

// Authenticator resolves credentials into sessions.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	CurrentUser(ctx context.Context, token string) (*models.CurrentUser, error)
}

// ListParams are the optional query parameters of a list call.
type ListParams struct {
	Filter  string
	Limit   int
	PerPage int
}

func (p ListParams) query() map[string]string {
	q := make(map[string]string)
	if p.Filter != "" && p.Filter != "All" {
		q["filter"] = p.Filter
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	if p.PerPage > 0 {
		q["per_page"] = strconv.Itoa(p.PerPage)
	}
	return q
}

// LoginResponse mirrors the JWT token endpoint response.
type LoginResponse struct {
	Token           string `json:"token"`
	UserEmail       string `json:"user_email"`
	UserNicename    string `json:"user_nicename"`
	UserDisplayName string `json:"user_display_name"`
}

// TransportError is a non-2xx answer from the content API.
type TransportError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("wordpress %s failed: status=%d, message=%s", e.Op, e.StatusCode, e.Message)
}

// apiError represents a WordPress REST error payload.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}

// APIClient is a resty-backed implementation of Gateway and Authenticator.
type APIClient struct {
	httpClient  *resty.Client
	namespaceV1 string
	namespaceV2 string
}

// NewClient builds a content API client using the provided configuration values.
func NewClient(cfg config.WordPressConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{
		httpClient:  restyClient,
		namespaceV1: strings.TrimSuffix(cfg.NamespaceV1, "/"),
		namespaceV2: strings.TrimSuffix(cfg.NamespaceV2, "/"),
	}
}

// List fetches a collection. The response body must be a JSON array.
func (c *APIClient) List(ctx context.Context, sess models.Session, resource Resource, params ListParams) ([]json.RawMessage, error) {
	op := "list " + string(resource)
	resp, err := c.execute(ctx, sess.Token, op, http.MethodGet, c.collectionPath(resource), nil, params.query())
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}
	return items, nil
}

// Get fetches a single resource by identifier.
func (c *APIClient) Get(ctx context.Context, sess models.Session, resource Resource, id int) (json.RawMessage, error) {
	resp, err := c.execute(ctx, sess.Token, "get "+string(resource), http.MethodGet, c.itemPath(resource, id), nil, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body()), nil
}

// Create posts a new resource.
func (c *APIClient) Create(ctx context.Context, sess models.Session, resource Resource, payload any) (json.RawMessage, error) {
	resp, err := c.execute(ctx, sess.Token, "create "+string(resource), http.MethodPost, c.collectionPath(resource), payload, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body()), nil
}

// Update replaces the fields of an existing resource.
func (c *APIClient) Update(ctx context.Context, sess models.Session, resource Resource, id int, payload any) (json.RawMessage, error) {
	resp, err := c.execute(ctx, sess.Token, "update "+string(resource), http.MethodPut, c.itemPath(resource, id), payload, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body()), nil
}

// Delete removes a resource permanently, bypassing the trash.
func (c *APIClient) Delete(ctx context.Context, sess models.Session, resource Resource, id int) error {
	_, err := c.execute(ctx, sess.Token, "delete "+string(resource), http.MethodDelete, c.itemPath(resource, id), nil, map[string]string{"force": "true"})
	return err
}

// Login exchanges credentials for a bearer token.
func (c *APIClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	result := new(LoginResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(result).
		SetError(apiErr).
		Post(c.namespaceV1 + "/token")
	if err != nil {
		return nil, fmt.Errorf("wordpress login: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, newTransportError("login", resp, apiErr)
	}
	if result.Token == "" {
		return nil, errors.New("wordpress login: empty token in response")
	}
	return result, nil
}

type userResponse struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Email      string            `json:"email"`
	AvatarURLs map[string]string `json:"avatar_urls"`
}

// CurrentUser resolves the profile behind token.
func (c *APIClient) CurrentUser(ctx context.Context, token string) (*models.CurrentUser, error) {
	resp, err := c.execute(ctx, token, "current user", http.MethodPost, c.namespaceV2+"/users/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var user userResponse
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	if user.Email == "" || user.ID == 0 {
		return nil, ErrNoCurrentUser
	}

	name := user.Name
	if name == "" {
		name = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}

	return &models.CurrentUser{
		ID:     user.ID,
		Name:   name,
		Email:  user.Email,
		Avatar: user.AvatarURLs["96"],
	}, nil
}

func (c *APIClient) collectionPath(resource Resource) string {
	return fmt.Sprintf("%s/%s", c.namespaceV2, resource)
}

func (c *APIClient) itemPath(resource Resource, id int) string {
	return fmt.Sprintf("%s/%s/%d", c.namespaceV2, resource, id)
}

func (c *APIClient) execute(ctx context.Context, token, op, method, path string, body any, query map[string]string) (*resty.Response, error) {
	if token == "" {
		return nil, fmt.Errorf("wordpress %s: %w", op, ErrMissingToken)
	}

	apiErr := new(apiError)
	req := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("wordpress %s: %w", op, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, newTransportError(op, resp, apiErr)
	}

	return resp, nil
}

func newTransportError(op string, resp *resty.Response, apiErr *apiError) *TransportError {
	terr := &TransportError{Op: op, StatusCode: resp.StatusCode()}
	if apiErr != nil {
		terr.Code = apiErr.Code
		terr.Message = apiErr.Message
	}
	if terr.Message == "" {
		terr.Message = strings.TrimSpace(resp.String())
	}
	if terr.Message == "" {
		terr.Message = http.StatusText(resp.StatusCode())
	}
	return terr
}
