package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// DefaultTimeout bounds each source attempt so a hung primary still leaves
// time to fall through to the secondary and the cache.
const DefaultTimeout = 12 * time.Second

// Client implements Provider over two REST country APIs and a cache.
type Client struct {
	primaryURL   string
	secondaryURL string
	http         *http.Client
	cache        Cache
	logger       *slog.Logger
}

func NewClient(primaryURL, secondaryURL string, timeout time.Duration, cache Cache, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		primaryURL:   strings.TrimRight(primaryURL, "/"),
		secondaryURL: strings.TrimRight(secondaryURL, "/"),
		http:         &http.Client{Timeout: timeout},
		cache:        cache,
		logger:       logger,
	}
}

// Load tries the primary source, then the secondary, then the cache.
// Source failures are logged and swallowed; only total exhaustion is
// surfaced, wrapped in ErrUnavailable.
func (c *Client) Load(ctx context.Context, codes []geoquiz.Code, cacheKey string) (map[geoquiz.Code]geoquiz.EntityInfo, error) {
	if entities, err := c.fetchPrimary(ctx, codes); err == nil {
		c.store(ctx, cacheKey, entities)
		return entities, nil
	} else {
		c.logger.Warn("primary source failed", "cache_key", cacheKey, "error", err)
	}

	if entities, err := c.fetchSecondary(ctx, codes); err == nil {
		c.store(ctx, cacheKey, entities)
		return entities, nil
	} else {
		c.logger.Warn("secondary source failed", "cache_key", cacheKey, "error", err)
	}

	if entities, err := c.cache.Get(ctx, cacheKey); err == nil && len(entities) > 0 {
		c.logger.Info("serving entities from cache", "cache_key", cacheKey, "count", len(entities))
		return entities, nil
	}

	return nil, fmt.Errorf("loading %q: %w", cacheKey, ErrUnavailable)
}

func (c *Client) store(ctx context.Context, cacheKey string, entities map[geoquiz.Code]geoquiz.EntityInfo) {
	if err := c.cache.Put(ctx, cacheKey, entities); err != nil {
		c.logger.Warn("caching entities failed", "cache_key", cacheKey, "error", err)
	}
}

// primaryCountry is the response shape of the primary source
// (restcountries.com v3.1).
type primaryCountry struct {
	CCA2 string `json:"cca2"`
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital     []string `json:"capital"`
	CapitalInfo struct {
		LatLng []float64 `json:"latlng"`
	} `json:"capitalInfo"`
	Flags struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
	Region    string `json:"region"`
	Subregion string `json:"subregion"`
}

func (c *Client) fetchPrimary(ctx context.Context, codes []geoquiz.Code) (map[geoquiz.Code]geoquiz.EntityInfo, error) {
	u := fmt.Sprintf("%s/alpha?codes=%s&fields=cca2,name,capital,capitalInfo,flags,region,subregion",
		c.primaryURL, url.QueryEscape(joinCodes(codes)))

	var countries []primaryCountry
	if err := c.getJSON(ctx, u, &countries); err != nil {
		return nil, err
	}

	entities := make(map[geoquiz.Code]geoquiz.EntityInfo, len(countries))
	for _, pc := range countries {
		if pc.CCA2 == "" {
			continue
		}
		info := geoquiz.EntityInfo{
			Code:      geoquiz.Code(pc.CCA2),
			Name:      pc.Name.Common,
			FlagRef:   pc.Flags.SVG,
			Region:    pc.Region,
			Subregion: pc.Subregion,
		}
		if info.FlagRef == "" {
			info.FlagRef = pc.Flags.PNG
		}
		if len(pc.Capital) > 0 {
			info.Capital = pc.Capital[0]
		}
		if len(pc.CapitalInfo.LatLng) == 2 {
			info.CapitalCoord = &geoquiz.LatLng{Lat: pc.CapitalInfo.LatLng[0], Lng: pc.CapitalInfo.LatLng[1]}
		}
		entities[info.Code] = info
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("primary returned no usable countries")
	}
	return entities, nil
}

// secondaryCountry is the adapted response shape of the fallback source
// (legacy v2 API). It carries no capital coordinates, so the capital stage
// is inapplicable for entities loaded from it.
type secondaryCountry struct {
	Alpha2Code string `json:"alpha2Code"`
	Name       string `json:"name"`
	Capital    string `json:"capital"`
	Flags      struct {
		SVG string `json:"svg"`
	} `json:"flags"`
	Region    string `json:"region"`
	Subregion string `json:"subregion"`
}

func (c *Client) fetchSecondary(ctx context.Context, codes []geoquiz.Code) (map[geoquiz.Code]geoquiz.EntityInfo, error) {
	u := fmt.Sprintf("%s/alpha?codes=%s", c.secondaryURL, url.QueryEscape(joinCodes(codes)))

	var countries []secondaryCountry
	if err := c.getJSON(ctx, u, &countries); err != nil {
		return nil, err
	}

	entities := make(map[geoquiz.Code]geoquiz.EntityInfo, len(countries))
	for _, sc := range countries {
		if sc.Alpha2Code == "" {
			continue
		}
		entities[geoquiz.Code(sc.Alpha2Code)] = geoquiz.EntityInfo{
			Code:      geoquiz.Code(sc.Alpha2Code),
			Name:      sc.Name,
			Capital:   sc.Capital,
			FlagRef:   sc.Flags.SVG,
			Region:    sc.Region,
			Subregion: sc.Subregion,
		}
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("secondary returned no usable countries")
	}
	return entities, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

func joinCodes(codes []geoquiz.Code) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
