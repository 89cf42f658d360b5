package czds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultAuthBaseURL = "https://account-api.icann.org"
	defaultAPIBaseURL  = "https://czds-api.icann.org"
)

// Client is the capability the syncer needs from CZDS: enumerate the zone
// files this account is approved for, and fetch one of them.
type Client interface {
	ApprovedZoneLinks(ctx context.Context) ([]string, error)
	DownloadZone(ctx context.Context, link, dir string) (string, error)
}

type client struct {
	AuthBaseURL string
	APIBaseURL  string

	username   string
	password   string
	token      string
	httpClient *http.Client
}

func NewClient(username, password string) Client {
	return &client{
		AuthBaseURL: defaultAuthBaseURL,
		APIBaseURL:  defaultAPIBaseURL,
		username:    username,
		password:    password,
		httpClient:  &http.Client{},
	}
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string `json:"accessToken"`
}

func (c *client) authenticate(ctx context.Context) error {
	body, err := json.Marshal(authRequest{Username: c.username, Password: c.password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AuthBaseURL+"/api/authenticate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authenticate: unexpected status %s", resp.Status)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return err
	}
	if auth.AccessToken == "" {
		return fmt.Errorf("authenticate: empty access token")
	}

	c.token = auth.AccessToken
	return nil
}

// do issues an authenticated request, logging in first if needed and retrying
// once after a 401 with a fresh token.
func (c *client) do(ctx context.Context, method, url string) (*http.Response, error) {
	if c.token == "" {
		if err := c.authenticate(ctx); err != nil {
			return nil, err
		}
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			logrus.Debug("czds token rejected, re-authenticating")
			if err := c.authenticate(ctx); err != nil {
				return nil, err
			}
			continue
		}

		return resp, nil
	}
}

func (c *client) ApprovedZoneLinks(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, c.APIBaseURL+"/czds/downloads/links")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list zone links: unexpected status %s", resp.Status)
	}

	var links []string
	if err := json.NewDecoder(resp.Body).Decode(&links); err != nil {
		return nil, err
	}
	return links, nil
}

func (c *client) DownloadZone(ctx context.Context, link, dir string) (string, error) {
	start := time.Now()

	resp, err := c.do(ctx, http.MethodGet, link)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", link, resp.Status)
	}

	name := attachmentName(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = path.Base(strings.TrimSuffix(link, "/"))
	}

	dest := filepath.Join(dir, filepath.Base(name))
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}

	written, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"file":     dest,
		"bytes":    written,
		"duration": time.Since(start),
	}).Debug("downloaded zone file")

	return dest, nil
}

// attachmentName extracts the filename from a Content-Disposition header,
// tolerating malformed values.
func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// TLDFromLink derives the logical zone key from a download link: the last
// path segment, minus a ".zone" suffix when present.
func TLDFromLink(link string) string {
	base := path.Base(strings.TrimSuffix(link, "/"))
	return strings.TrimSuffix(base, ".zone")
}
