// Package weblate talks to the Weblate REST API: it lists the translations
// registered for a project component and downloads each rendered file.
package weblate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pitabwire/util"
)

// DefaultFormat is the export format Weblate renders Android string resources in.
const DefaultFormat = "aresource"

var (
	ErrAuthenticationRequired = errors.New("authentication required: no API token configured")
	ErrDiscoveryFailed        = errors.New("could not list translations")
	ErrNoTranslationsFound    = errors.New("no translations found")
	ErrDownloadFailed         = errors.New("could not download translation")
)

// Fetcher returns the body of an authenticated GET request.
type Fetcher interface {
	Fetch(ctx context.Context, endpointURL string, credential string) ([]byte, error)
}

// Endpoint identifies one component on a Weblate instance. It does not change
// during a run. Project and Component are slugs; a slug may itself contain
// "/" (a category path such as "montinode/ttag"), which is kept as a path
// separator while every segment is escaped.
type Endpoint struct {
	Host       string
	Project    string
	Component  string
	Credential string
}

// LocaleDescriptor is one translation the service tracks for the component.
type LocaleDescriptor struct {
	LanguageCode string `json:"language_code"`
}

type translationList struct {
	Results []LocaleDescriptor `json:"results"`
}

// Client lists and downloads translations of a single component.
type Client struct {
	endpoint Endpoint
	fetcher  Fetcher
}

// NewClient creates a Client for endpoint using fetcher for every request.
func NewClient(endpoint Endpoint, fetcher Fetcher) *Client {
	return &Client{endpoint: endpoint, fetcher: fetcher}
}

// Endpoint returns the endpoint the client was created with.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// TranslationsURL is the listing endpoint of the component.
func (c *Client) TranslationsURL() string {
	return fmt.Sprintf("%s/api/components/%s/%s/translations/",
		c.host(), escapeSlug(c.endpoint.Project), escapeSlug(c.endpoint.Component))
}

// FileURL is the rendered-file endpoint for one language in the given export format.
func (c *Client) FileURL(languageCode string, format string) string {
	return fmt.Sprintf("%s/api/translations/%s/%s/%s/file/?format=%s",
		c.host(), escapeSlug(c.endpoint.Project), escapeSlug(c.endpoint.Component),
		url.PathEscape(languageCode), url.QueryEscape(format))
}

// escapeSlug path-escapes each "/" separated segment of slug.
func escapeSlug(slug string) string {
	segments := strings.Split(slug, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

func (c *Client) host() string {
	return strings.TrimRight(c.endpoint.Host, "/")
}

// Discover returns the locales registered for the component in service order.
// A missing credential fails before any request is made.
func (c *Client) Discover(ctx context.Context) ([]LocaleDescriptor, error) {
	if c.endpoint.Credential == "" {
		return nil, ErrAuthenticationRequired
	}

	listURL := c.TranslationsURL()
	util.Log(ctx).WithField("url", listURL).Info("fetching available translations")

	body, err := c.fetcher.Fetch(ctx, listURL, c.endpoint.Credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscoveryFailed, err)
	}

	var list translationList
	if err = json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrDiscoveryFailed, err)
	}

	if len(list.Results) == 0 {
		return nil, fmt.Errorf("%w for %s/%s", ErrNoTranslationsFound, c.endpoint.Project, c.endpoint.Component)
	}

	return list.Results, nil
}

// Download fetches the rendered resource file of one language. The bytes are
// returned untouched.
func (c *Client) Download(ctx context.Context, languageCode string, format string) ([]byte, error) {
	if c.endpoint.Credential == "" {
		return nil, ErrAuthenticationRequired
	}

	body, err := c.fetcher.Fetch(ctx, c.FileURL(languageCode, format), c.endpoint.Credential)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDownloadFailed, languageCode, err)
	}

	return body, nil
}
