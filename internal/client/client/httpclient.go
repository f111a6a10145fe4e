package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/juizlab/internal/client/models"
	"github.com/dmitrijs2005/juizlab/internal/common"
	"github.com/dmitrijs2005/juizlab/internal/logging"
)

const maxErrorBody = 64 << 10

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	logger  logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (timeouts, transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) ObtainToken(ctx context.Context, username string, password []byte) (models.Credential, error) {

	var cred models.Credential
	req := tokenRequest{Username: username, Password: string(password)}
	if err := c.do(ctx, http.MethodPost, "/api/token/", "", req, &cred); err != nil {
		return models.Credential{}, err
	}
	if !cred.Complete() {
		return models.Credential{}, fmt.Errorf("token response: %w", ErrUnavailable)
	}
	return cred, nil
}

// Refresh exchanges a refresh token for a new pair. When the backend does not
// rotate refresh tokens the old one is kept.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (models.Credential, error) {

	var cred models.Credential
	if err := c.do(ctx, http.MethodPost, "/api/token/refresh/", "", refreshRequest{Refresh: refreshToken}, &cred); err != nil {
		return models.Credential{}, err
	}
	if cred.AccessToken == "" {
		return models.Credential{}, fmt.Errorf("refresh response: %w", ErrUnavailable)
	}
	if cred.RefreshToken == "" {
		cred.RefreshToken = refreshToken
	}
	return cred, nil
}

func (c *HTTPClient) Check(ctx context.Context, accessToken string) (models.Identity, error) {

	var id models.Identity
	if err := c.do(ctx, http.MethodGet, "/api/auth/check", accessToken, nil, &id); err != nil {
		return models.Identity{}, err
	}
	if !id.Authenticated {
		return models.Identity{}, ErrUnauthorized
	}
	return id, nil
}

func (c *HTTPClient) FetchProfile(ctx context.Context, userID int64, accessToken string) (models.Profile, error) {

	var p models.Profile
	path := "/api/profile/user/" + strconv.FormatInt(userID, 10) + "/"
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

type userPageResponse struct {
	User      models.Profile    `json:"user"`
	Recipes   []models.Recipe   `json:"recipes"`
	Tutorials []models.Tutorial `json:"tutorials"`
	Blogs     []models.Blog     `json:"blogs"`
}

// UserPage loads the public profile of userID together with the recipes,
// tutorials and blogs they published.
func (c *HTTPClient) UserPage(ctx context.Context, userID int64, accessToken string) (models.UserPage, error) {

	var raw userPageResponse
	path := "/api/profile/" + strconv.FormatInt(userID, 10) + "/"
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &raw); err != nil {
		return models.UserPage{}, err
	}

	page := models.UserPage{Profile: raw.User}
	for _, r := range raw.Recipes {
		page.Recipes = append(page.Recipes, r.Item())
	}
	for _, t := range raw.Tutorials {
		page.Tutorials = append(page.Tutorials, t.Item())
	}
	for _, b := range raw.Blogs {
		page.Blogs = append(page.Blogs, b.Item())
	}
	return page, nil
}

// UpdateProfile replaces the editable fields of profile profileID. The
// backend accepts form data only; a profile owned by someone else is refused
// with ErrForbidden.
func (c *HTTPClient) UpdateProfile(ctx context.Context, profileID int64, draft models.ProfileDraft, accessToken string) (models.Profile, error) {

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"email", draft.Email},
		{"full_name", draft.FullName},
		{"bio", draft.Bio},
		{"tel", draft.Tel},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return models.Profile{}, fmt.Errorf("encode profile: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return models.Profile{}, fmt.Errorf("encode profile: %w", err)
	}

	var p models.Profile
	path := "/api/profile/edit/" + strconv.FormatInt(profileID, 10) + "/"
	if err := c.send(ctx, http.MethodPut, path, accessToken, mw.FormDataContentType(), &buf, &p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, email string, password []byte) error {

	req := registerRequest{Username: username, Email: email, Password: string(password)}
	return c.do(ctx, http.MethodPost, "/api/register", "", req, nil)
}

func (c *HTTPClient) List(ctx context.Context, kind models.Kind, accessToken string) ([]models.Item, error) {

	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/"+kind.Plural()+"/", accessToken, nil, &raw); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(raw))
	for _, r := range raw {
		it, err := decodeItem(kind, r)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (c *HTTPClient) Get(ctx context.Context, kind models.Kind, id int64, accessToken string) (models.Item, error) {

	var raw json.RawMessage
	path := "/api/" + kind.Plural() + "/" + strconv.FormatInt(id, 10) + "/"
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &raw); err != nil {
		return models.Item{}, err
	}
	return decodeItem(kind, raw)
}

func (c *HTTPClient) Add(ctx context.Context, draft models.Draft, accessToken string) (models.Item, error) {

	var raw json.RawMessage
	path := "/api/" + draft.Kind.Plural() + "/add"
	if err := c.do(ctx, http.MethodPost, path, accessToken, draftPayload(draft), &raw); err != nil {
		return models.Item{}, err
	}
	return decodeItem(draft.Kind, raw)
}

func (c *HTTPClient) Edit(ctx context.Context, id int64, draft models.Draft, accessToken string) (models.Item, error) {

	var raw json.RawMessage
	path := "/api/edit/" + string(draft.Kind) + "/" + strconv.FormatInt(id, 10) + "/"
	if err := c.do(ctx, http.MethodPut, path, accessToken, draftPayload(draft), &raw); err != nil {
		return models.Item{}, err
	}
	return decodeItem(draft.Kind, raw)
}

func (c *HTTPClient) Delete(ctx context.Context, kind models.Kind, id int64, accessToken string) error {

	path := "/api/delete/" + string(kind) + "/" + strconv.FormatInt(id, 10) + "/"
	return c.do(ctx, http.MethodDelete, path, accessToken, nil, nil)
}

func draftPayload(d models.Draft) map[string]string {
	p := map[string]string{"title": d.Title}
	switch d.Kind {
	case models.KindBlog:
		p["content"] = d.Body
	case models.KindTutorial:
		p["description"] = d.Body
		p["video_url"] = d.Extra
	default:
		p["description"] = d.Body
		if d.Extra != "" {
			p["image"] = d.Extra
		}
	}
	return p
}

func decodeItem(kind models.Kind, raw []byte) (models.Item, error) {
	switch kind {
	case models.KindRecipe:
		var r models.Recipe
		if err := json.Unmarshal(raw, &r); err != nil {
			return models.Item{}, fmt.Errorf("decode recipe: %w", err)
		}
		return r.Item(), nil
	case models.KindTutorial:
		var t models.Tutorial
		if err := json.Unmarshal(raw, &t); err != nil {
			return models.Item{}, fmt.Errorf("decode tutorial: %w", err)
		}
		return t.Item(), nil
	case models.KindBlog:
		var b models.Blog
		if err := json.Unmarshal(raw, &b); err != nil {
			return models.Item{}, fmt.Errorf("decode blog: %w", err)
		}
		return b.Item(), nil
	default:
		return models.Item{}, fmt.Errorf("unknown content kind %q", kind)
	}
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
// A non-empty token is sent as a bearer Authorization header.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {

	if in == nil {
		return c.send(ctx, method, path, token, "", nil, out)
	}
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.send(ctx, method, path, token, "application/json", bytes.NewReader(b), out)
}

// send performs the request with body of the given content type and maps the
// response status to the package errors.
func (c *HTTPClient) send(ctx context.Context, method, path, token, contentType string, body io.Reader, out any) error {

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Debug(ctx, "request failed", "method", method, "path", path, "err", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug(ctx, "request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return mapStatus(resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapStatus(code int, body []byte) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, errorMessage(body))
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return parseValidation(body)
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}

// errorMessage extracts {"error": "..."} or {"detail": "..."} from body, or
// returns "permission denied".
func errorMessage(body []byte) string {
	var v struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &v); err == nil {
		if v.Error != "" {
			return v.Error
		}
		if v.Detail != "" {
			return v.Detail
		}
	}
	return "permission denied"
}

// parseValidation reads the backend's error bodies: {"error": "..."},
// {"detail": "..."} or {"field": ["msg", ...]}.
func parseValidation(body []byte) error {
	ve := &ValidationError{}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		ve.Message = strings.TrimSpace(string(body))
		return ve
	}

	for key, raw := range obj {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if key == "error" || key == "detail" || key == "message" {
				ve.Message = s
				continue
			}
			ve.add(key, s)
			continue
		}
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			for _, m := range list {
				ve.add(key, m)
			}
		}
	}
	return ve
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}
