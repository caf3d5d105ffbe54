package update

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appErrors "vercheck/internal/errors"
)

// Default configuration values.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "vercheck-update-checker"

	// maxManifestBytes caps how much of a response body is read.
	maxManifestBytes = 1 << 20
)

// Fetcher retrieves and parses a release manifest.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]Band, error)
}

// ManifestClient fetches the XML release manifest over HTTP(S).
type ManifestClient struct {
	httpClient *http.Client
	userAgent  string
}

// ClientOption configures a ManifestClient.
type ClientOption func(*ManifestClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *ManifestClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ManifestClient) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *ManifestClient) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// NewManifestClient creates a client. The default transport takes its proxy
// from HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
func NewManifestClient(opts ...ClientOption) *ManifestClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	c := &ManifestClient{
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch issues a single GET for url and parses the body.
// Transport failures and non-2xx responses carry CodeNetworkFailure; a body
// that is not a usable manifest carries CodeParseFailed.
func (c *ManifestClient) Fetch(ctx context.Context, url string) ([]Band, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeNetworkFailure, "create manifest request", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeNetworkFailure, "fetch manifest", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, appErrors.Newf(appErrors.CodeNetworkFailure, nil, "fetch manifest: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes+1))
	if err != nil {
		return nil, appErrors.New(appErrors.CodeNetworkFailure, "read manifest", err)
	}
	if len(body) > maxManifestBytes {
		return nil, appErrors.Newf(appErrors.CodeParseFailed, nil, "manifest exceeds %d bytes", maxManifestBytes)
	}

	return ParseManifest(body)
}

type xmlBand struct {
	ID            string  `xml:"id,attr"`
	LatestVersion string  `xml:"latestVersion"`
	DownloadURL   *string `xml:"downloadUrl"`
}

// ParseManifest decodes a manifest document. The root element may have any
// name; its direct <band> children are returned in document order.
func ParseManifest(data []byte) ([]Band, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root, err := findRoot(dec)
	if err != nil {
		return nil, err
	}

	var bands []Band
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, parseError("read manifest", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "band" {
				if err := dec.Skip(); err != nil {
					return nil, parseError("read manifest", err)
				}
				continue
			}
			var raw xmlBand
			if err := dec.DecodeElement(&raw, &t); err != nil {
				return nil, parseError("decode band", err)
			}
			band, err := raw.toBand()
			if err != nil {
				return nil, err
			}
			bands = append(bands, band)
		case xml.EndElement:
			if t.Name != root.Name {
				return nil, parseError("read manifest", fmt.Errorf("unexpected </%s>", t.Name.Local))
			}
			if err := expectEOF(dec); err != nil {
				return nil, err
			}
			if len(bands) == 0 {
				return nil, appErrors.New(appErrors.CodeParseFailed, "manifest has no bands", nil)
			}
			return bands, nil
		}
	}
}

func (b xmlBand) toBand() (Band, error) {
	v, err := ParseVersion(b.LatestVersion)
	if err != nil {
		return Band{}, appErrors.Newf(appErrors.CodeParseFailed, err, "band %q latestVersion", b.ID)
	}
	band := Band{ChannelID: b.ID, LatestVersion: v}
	if b.DownloadURL != nil {
		band.DownloadURL = strings.TrimSpace(*b.DownloadURL)
	}
	return band, nil
}

func findRoot(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, appErrors.New(appErrors.CodeParseFailed, "manifest is empty", nil)
		}
		if err != nil {
			return xml.StartElement{}, parseError("read manifest", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return xml.StartElement{}, parseError("read manifest", fmt.Errorf("text before root element"))
			}
		}
	}
}

// expectEOF accepts only whitespace, comments and processing instructions
// after the root element.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return parseError("read manifest", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return parseError("read manifest", fmt.Errorf("text after root element"))
			}
		case xml.Comment, xml.ProcInst:
		default:
			return parseError("read manifest", fmt.Errorf("content after root element"))
		}
	}
}

func parseError(msg string, err error) error {
	return appErrors.New(appErrors.CodeParseFailed, msg, err)
}
