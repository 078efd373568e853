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
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/edusync/edusync-client/internal/client/models"
	"github.com/edusync/edusync-client/internal/common"
)

const maxResponseBytes = 600 << 20

// HTTPClient implements the remote contracts over the portal's REST API.
type HTTPClient struct {
	baseURL string
	hc      *http.Client

	mu    sync.RWMutex
	token string
	email string
}

var (
	_ AuthAPI      = (*HTTPClient)(nil)
	_ ResourcesAPI = (*HTTPClient)(nil)
	_ UserAPI      = (*HTTPClient)(nil)
	_ SearchAPI    = (*HTTPClient)(nil)
	_ Authorizer   = (*HTTPClient)(nil)
)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) BaseURL() string { return c.baseURL }

func (c *HTTPClient) Authorize(token, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.email = email
}

func (c *HTTPClient) credentials() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.email
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out loginResponse
	if err := c.callJSON(ctx, "login", http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return LoginResult{}, err
	}
	if out.SessionToken == "" || out.User.Email == "" {
		return LoginResult{}, &common.RemoteError{Op: "login", Message: "malformed response"}
	}

	c.Authorize(out.SessionToken, out.User.Email)
	return LoginResult{User: out.User.identity(), SessionToken: out.SessionToken}, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (models.Identity, error) {
	body := registerRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      strings.ToLower(string(req.Role)),
	}
	var out registerResponse
	if err := c.callJSON(ctx, "register", http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return models.Identity{}, err
	}
	return out.User.identity(), nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.callJSON(ctx, "logout", http.MethodPost, "/api/auth/logout", nil, nil)
	c.Authorize("", "")
	return err
}

func (c *HTTPClient) List(ctx context.Context) ([]models.Resource, error) {
	var out []resourceDTO
	if err := c.callJSON(ctx, "list resources", http.MethodGet, "/api/resources/list", nil, &out); err != nil {
		return nil, err
	}
	res := make([]models.Resource, 0, len(out))
	for _, r := range out {
		res = append(res, r.resource())
	}
	return res, nil
}

func (c *HTTPClient) Create(ctx context.Context, in models.ResourceInput, file models.File) (models.Resource, error) {
	fields := [][2]string{{"title", in.Title}, {"description", in.Description}}
	if in.Category != "" {
		fields = append(fields, [2]string{"category", in.Category})
	}
	if in.Difficulty != "" {
		fields = append(fields, [2]string{"difficulty", in.Difficulty})
	}

	body, ctype, err := multipartBody(fields, &file)
	if err != nil {
		return models.Resource{}, &common.RemoteError{Op: "upload resource", Message: "request failed", Err: err}
	}

	var out resourceDTO
	if err := c.call(ctx, "upload resource", http.MethodPost, "/api/resources/upload", body, ctype, &out); err != nil {
		return models.Resource{}, err
	}
	return out.resource(), nil
}

func (c *HTTPClient) Update(ctx context.Context, id string, patch models.ResourcePatch) (models.Resource, error) {
	body := resourceUpdateRequest(patch)
	var out resourceDTO
	if err := c.callJSON(ctx, "update resource", http.MethodPut, "/api/resources/"+url.PathEscape(id), body, &out); err != nil {
		return models.Resource{}, err
	}
	return out.resource(), nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.callOwned(ctx, "delete resource", http.MethodDelete, "/api/resources/"+url.PathEscape(id))
}

func (c *HTTPClient) Download(ctx context.Context, id string) ([]byte, error) {
	const op = "download resource"

	req, err := c.newRequest(ctx, http.MethodGet, "/api/resources/download/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, &common.RemoteError{Op: op, Message: "request failed", Err: err}
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, common.Remote(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, common.Remote(op, fmt.Errorf("%w: %v", common.ErrUnavailable, err))
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		var env envelope
		_ = json.Unmarshal(data, &env)
		return nil, statusError(op, resp.StatusCode, env.text())
	}
	return data, nil
}

func (c *HTTPClient) Search(ctx context.Context, query string) ([]models.Candidate, error) {
	var out []searchHitDTO
	path := "/api/resources/search?query=" + url.QueryEscape(query)
	if err := c.callJSON(ctx, "search", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	res := make([]models.Candidate, 0, len(out))
	for _, h := range out {
		res = append(res, h.candidate())
	}
	return res, nil
}

func (c *HTTPClient) UploadAvatar(ctx context.Context, file models.File) (models.AvatarRef, error) {
	_, email := c.credentials()
	body, ctype, err := multipartBody([][2]string{{"userEmail", email}}, &file)
	if err != nil {
		return "", &common.RemoteError{Op: "upload avatar", Message: "request failed", Err: err}
	}

	var out avatarResponse
	if err := c.call(ctx, "upload avatar", http.MethodPost, "/api/user/profile-picture", body, ctype, &out); err != nil {
		return "", err
	}
	return models.AvatarRef(out.ProfilePicture), nil
}

func (c *HTTPClient) RemoveAvatar(ctx context.Context) error {
	return c.callOwned(ctx, "remove avatar", http.MethodDelete, "/api/user/profile-picture")
}

func (c *HTTPClient) callJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	ctype := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &common.RemoteError{Op: op, Message: "request failed", Err: err}
		}
		body, ctype = bytes.NewReader(b), "application/json"
	}
	return c.call(ctx, op, method, path, body, ctype, out)
}

// callOwned sends the current user's email as the userEmail query
// parameter, as the backend expects on owner-scoped deletes. Servers do not
// parse form bodies of DELETE requests.
func (c *HTTPClient) callOwned(ctx context.Context, op, method, path string) error {
	_, email := c.credentials()
	q := url.Values{"userEmail": {email}}.Encode()
	return c.call(ctx, op, method, path+"?"+q, nil, "", nil)
}

func (c *HTTPClient) call(ctx context.Context, op, method, path string, body io.Reader, ctype string, out any) error {
	req, err := c.newRequest(ctx, method, path, body, ctype)
	if err != nil {
		return &common.RemoteError{Op: op, Message: "request failed", Err: err}
	}

	resp, err := c.do(req)
	if err != nil {
		return common.Remote(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return common.Remote(op, fmt.Errorf("%w: %v", common.ErrUnavailable, err))
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(op, resp.StatusCode, env.text())
	}
	if decodeErr != nil {
		return &common.RemoteError{Op: op, Message: "malformed response", Err: decodeErr}
	}
	if !env.Success {
		msg := env.text()
		if msg == "" {
			msg = "request failed"
		}
		return &common.RemoteError{Op: op, Message: msg}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &common.RemoteError{Op: op, Message: "malformed response", Err: err}
	}
	return nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, ctype string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	if token, _ := c.credentials(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	return req, nil
}

func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.hc.Do(req)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
}

func statusError(op string, code int, msg string) error {
	var cause error
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		cause = common.ErrUnauthorized
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		cause = common.ErrUnavailable
	case http.StatusNotFound:
		cause = common.ErrNotFound
	default:
		cause = fmt.Errorf("http status %d", code)
	}

	err := common.Remote(op, cause)
	if re, ok := err.(*common.RemoteError); ok && msg != "" {
		re.Message = msg
	}
	return err
}

func multipartBody(fields [][2]string, file *models.File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
		ctype := file.ContentType
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		h.Set("Content-Type", ctype)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
