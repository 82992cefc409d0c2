// Package scrape extracts car listings from a single Standvirtual search
// results page. It is deliberately a best-effort, one-page extraction: no
// retries, no pagination, no rate-limit avoidance.
package scrape

import (
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/auto-hunter/site/cache"
)

// Listing is one scraped car advertisement. Listings are never mutated after
// creation and are discarded at the end of the search session.
type Listing struct {
	Title       string `json:"title"`
	Price       int    `json:"price"`
	Year        int    `json:"year"`
	Mileage     int    `json:"km"`
	Fuel        string `json:"fuel"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Filters are the structured search criteria. Zero values mean "unset".
type Filters struct {
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Fuel     string `json:"fuel"`
	MinPrice int    `json:"min_price"`
	MaxPrice int    `json:"max_price"`
	MinYear  int    `json:"min_year"`
	MaxKM    int    `json:"max_km"`
}

// FetchError means the results page could not be fetched. An empty result
// set is not a FetchError; it signals no matches or a blocked page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config for the scraper. BaseURL is overridable so tests can point it at a
// local server.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CachePage bool
	CacheTTL  time.Duration
}

// Scraper fetches one results page per Search call.
type Scraper struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	cache     *cache.Cache[[]Listing]
	cacheTTL  time.Duration
}

// New builds a Scraper. The page cache keeps a re-rendered panel from
// re-hitting the site within the TTL.
func New(cfg Config) (*Scraper, error) {
	s := &Scraper{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		cacheTTL:  cfg.CacheTTL,
	}
	if s.timeout == 0 {
		s.timeout = 20 * time.Second
	}
	if s.cacheTTL == 0 {
		s.cacheTTL = 5 * time.Minute
	}
	if cfg.CachePage {
		c, err := cache.New[[]Listing](func(value []Listing) int64 {
			return int64(len(value)*200 + 1)
		}, "Scrape Page Cache")
		if err != nil {
			return nil, fmt.Errorf("failed to initialize scrape cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

// Search fetches one results page and parses its listing cards. A possibly
// empty slice is a normal outcome; a *FetchError means the page itself could
// not be retrieved.
func (s *Scraper) Search(f Filters) ([]Listing, error) {
	searchURL := s.searchURL(f)

	if s.cache != nil {
		if listings, ok := s.cache.Get(searchURL); ok {
			log.Printf("[scrape] cache hit for %s", searchURL)
			return listings, nil
		}
	}

	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(s.timeout)

	var listings []Listing
	var fetchErr *FetchError

	c.OnHTML("article[data-id]", func(e *colly.HTMLElement) {
		listing := parseCard(e.DOM, e.Request)
		if listing.Title == "" {
			return
		}
		listings = append(listings, listing)
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = &FetchError{
			URL:        searchURL,
			StatusCode: r.StatusCode,
			Err:        err,
		}
	})

	log.Printf("[scrape] Search initiated for %s", searchURL)
	if err := c.Visit(searchURL); err != nil && fetchErr == nil {
		fetchErr = &FetchError{URL: searchURL, Err: err}
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	log.Printf("[scrape] Parsed %d listings", len(listings))
	if s.cache != nil {
		s.cache.SetWithTTL(searchURL, listings, int64(len(listings)*200+1), s.cacheTTL)
	}
	return listings, nil
}

// searchURL builds the Standvirtual search URL. Brand and model are path
// segments; everything else is a search query parameter.
func (s *Scraper) searchURL(f Filters) string {
	path := s.baseURL + "/carros"
	if f.Brand != "" {
		path += "/" + url.PathEscape(slugify(f.Brand))
		if f.Model != "" {
			path += "/" + url.PathEscape(slugify(f.Model))
		}
	}

	q := url.Values{}
	if f.MinPrice > 0 {
		q.Set("search[filter_float_price:from]", strconv.Itoa(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		q.Set("search[filter_float_price:to]", strconv.Itoa(f.MaxPrice))
	}
	if f.MinYear > 0 {
		q.Set("search[filter_float_first_registration_year:from]", strconv.Itoa(f.MinYear))
	}
	if f.MaxKM > 0 {
		q.Set("search[filter_float_mileage:to]", strconv.Itoa(f.MaxKM))
	}
	if f.Fuel != "" {
		q.Set("search[filter_enum_fuel_type]", slugify(f.Fuel))
	}

	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// parseCard extracts one Listing from a results-page article element.
func parseCard(card *goquery.Selection, req *colly.Request) Listing {
	titleLink := card.Find("h2 a").First()
	if titleLink.Length() == 0 {
		titleLink = card.Find("h1 a").First()
	}

	listing := Listing{
		Title:       strings.TrimSpace(titleLink.Text()),
		Price:       parseNumber(card.Find("h3").First().Text()),
		Description: strings.TrimSpace(card.Find("p[data-sninfo-value], p.excerpt").First().Text()),
		ImageURL:    card.Find("img").First().AttrOr("src", ""),
	}

	if href, ok := titleLink.Attr("href"); ok {
		listing.URL = req.AbsoluteURL(href)
	}

	// Parameter list: year, mileage and fuel type appear as short dd/li
	// entries in varying order.
	card.Find("dd, ul li").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		switch {
		case text == "":
		case isFuelType(text):
			if listing.Fuel == "" {
				listing.Fuel = text
			}
		case strings.HasSuffix(text, "km"):
			if listing.Mileage == 0 {
				listing.Mileage = parseNumber(text)
			}
		case isYear(text):
			if listing.Year == 0 {
				listing.Year = parseNumber(text)
			}
		}
	})

	if loc := card.Find("p[data-testid='location-date'], .ooa-location").First(); loc.Length() > 0 {
		listing.Location = strings.TrimSpace(loc.Text())
	}

	return listing
}

func isFuelType(text string) bool {
	switch strings.ToLower(text) {
	case "gasolina", "diesel", "gpl", "híbrido", "hibrido", "eléctrico", "elétrico", "electrico":
		return true
	}
	return false
}

func isYear(text string) bool {
	if len(text) != 4 {
		return false
	}
	n, err := strconv.Atoi(text)
	return err == nil && n >= 1900 && n <= 2100
}

// parseNumber strips everything but digits. "23 500 €" -> 23500.
func parseNumber(text string) int {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, _ := strconv.Atoi(b.String())
	return n
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}
