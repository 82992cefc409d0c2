package scrape

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<main>
<article data-id="101">
  <img src="https://img.example/civic.jpg">
  <h2><a href="/carros/anuncio/honda-civic-101.html">Honda Civic 1.4i S</a></h2>
  <h3>3 500 &euro;</h3>
  <ul>
    <li>2001</li>
    <li>107 000 km</li>
    <li>Gasolina</li>
  </ul>
  <p data-testid="location-date">Lisboa</p>
</article>
<article data-id="102">
  <img src="https://img.example/320d.jpg">
  <h2><a href="/carros/anuncio/bmw-320d-102.html">BMW 320d Touring</a></h2>
  <h3>21 900 &euro;</h3>
  <ul>
    <li>2019</li>
    <li>98 000 km</li>
    <li>Diesel</li>
  </ul>
  <p data-testid="location-date">Porto</p>
</article>
</main>
</body></html>`

func newTestScraper(t *testing.T, srvURL string, cachePage bool) *Scraper {
	t.Helper()
	s, err := New(Config{
		BaseURL:   srvURL,
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
		CachePage: cachePage,
	})
	require.NoError(t, err)
	return s
}

func TestSearch_ParsesListingCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	s := newTestScraper(t, srv.URL, false)

	listings, err := s.Search(Filters{Brand: "BMW"})

	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Honda Civic 1.4i S", listings[0].Title)
	assert.Equal(t, 3500, listings[0].Price)
	assert.Equal(t, 2001, listings[0].Year)
	assert.Equal(t, 107000, listings[0].Mileage)
	assert.Equal(t, "Gasolina", listings[0].Fuel)
	assert.Equal(t, "Lisboa", listings[0].Location)
	assert.Equal(t, srv.URL+"/carros/anuncio/honda-civic-101.html", listings[0].URL)
	assert.Equal(t, "https://img.example/civic.jpg", listings[0].ImageURL)

	assert.Equal(t, "BMW 320d Touring", listings[1].Title)
	assert.Equal(t, 21900, listings[1].Price)
	assert.Equal(t, "Diesel", listings[1].Fuel)
}

func TestSearch_EmptyPageIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><main></main></body></html>"))
	}))
	defer srv.Close()

	s := newTestScraper(t, srv.URL, false)

	listings, err := s.Search(Filters{Brand: "lada"})

	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestSearch_HTTPFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	s := newTestScraper(t, srv.URL, false)

	_, err := s.Search(Filters{})

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
}

func TestSearch_ConnectionFailureIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	s := newTestScraper(t, url, false)

	_, err := s.Search(Filters{})

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestSearch_PageCacheSkipsSecondFetch(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	s := newTestScraper(t, srv.URL, true)

	first, err := s.Search(Filters{Brand: "honda"})
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Give ristretto time to admit the entry.
	time.Sleep(50 * time.Millisecond)

	second, err := s.Search(Filters{Brand: "honda"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits)
}

func TestSearchURL(t *testing.T) {
	s, err := New(Config{BaseURL: "https://www.standvirtual.com"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		filters Filters
		want    string
	}{
		{
			name:    "no filters",
			filters: Filters{},
			want:    "https://www.standvirtual.com/carros",
		},
		{
			name:    "brand and model become path segments",
			filters: Filters{Brand: "BMW", Model: "Serie 3"},
			want:    "https://www.standvirtual.com/carros/bmw/serie-3",
		},
		{
			name:    "model without brand is ignored",
			filters: Filters{Model: "golf"},
			want:    "https://www.standvirtual.com/carros",
		},
		{
			name:    "numeric filters become query params",
			filters: Filters{Brand: "bmw", MinPrice: 20000, MaxPrice: 30000, MinYear: 2018, MaxKM: 80000},
			want: "https://www.standvirtual.com/carros/bmw?" +
				"search%5Bfilter_float_first_registration_year%3Afrom%5D=2018&" +
				"search%5Bfilter_float_mileage%3Ato%5D=80000&" +
				"search%5Bfilter_float_price%3Afrom%5D=20000&" +
				"search%5Bfilter_float_price%3Ato%5D=30000",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.searchURL(tc.filters))
		})
	}
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 23500, parseNumber("23 500 €"))
	assert.Equal(t, 107000, parseNumber("107.000 km"))
	assert.Equal(t, 0, parseNumber("no digits"))
}
