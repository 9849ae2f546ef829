package nyaa

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"animetracker/internal/config"
	"animetracker/internal/services"
)

const listingFixture = `<!DOCTYPE html>
<html><body>
<table class="table torrent-list">
<tbody>
<tr class="default">
	<td><a href="/?c=1_2" title="Anime - English-translated">cat</a></td>
	<td colspan="2">
		<a href="/view/1800001#comments" class="comments" title="3 comments">3</a>
		<a href="/view/1800001" title="[SubsPlease] Sousou no Frieren - 05 (1080p) [ABCD1234].mkv">[SubsPlease] Sousou no Frieren - 05 (1080p)</a>
	</td>
	<td class="text-center">
		<a href="/download/1800001.torrent"><i class="fa fa-download"></i></a>
		<a href="magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567&amp;dn=frieren"><i class="fa fa-magnet"></i></a>
	</td>
	<td class="text-center">1.4 GiB</td>
	<td class="text-center" data-timestamp="1700000000">2023-11-14 22:13:20</td>
	<td class="text-center" style="color: green;">1,204</td>
	<td class="text-center" style="color: red;">17</td>
	<td class="text-center">9001</td>
</tr>
<tr class="success">
	<td colspan="2"><a href="/view/1800002" title="[Erai-raws] Sousou no Frieren - 01 ~ 28 [1080p]">batch</a></td>
	<td class="text-center"><a href="magnet:?xt=urn:btih:fedcba9876543210fedcba9876543210fedcba98">m</a></td>
</tr>
<tr class="default">
	<td colspan="2"><a href="/view/1800003" title="No magnet here">x</a></td>
	<td class="text-center">1 GiB</td>
</tr>
</tbody>
</table>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(config.Nyaa{BaseURL: srv.URL, UserAgent: "animetracker-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestSearchParsesListing(t *testing.T) {
	var gotQuery url.Values
	var gotUA string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(listingFixture))
	})

	results, err := client.Search(context.Background(), "Sousou no Frieren S1E5 1080p")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery.Get("q") != "Sousou no Frieren S1E5 1080p" {
		t.Fatalf("unexpected q param %q", gotQuery.Get("q"))
	}
	if gotQuery.Get("c") != "1_2" || gotQuery.Get("f") != "0" || gotQuery.Get("s") != "seeders" || gotQuery.Get("o") != "desc" {
		t.Fatalf("unexpected query params %v", gotQuery)
	}
	if gotUA != "animetracker-test" {
		t.Fatalf("expected user agent header, got %q", gotUA)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}

	first := results[0]
	if first.Title != "[SubsPlease] Sousou no Frieren - 05 (1080p) [ABCD1234].mkv" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if !strings.HasSuffix(first.Link, "/view/1800001") {
		t.Fatalf("expected absolute view link, got %q", first.Link)
	}
	if !strings.HasPrefix(first.MagnetLink, "magnet:?xt=urn:btih:0123456789abcdef") {
		t.Fatalf("unexpected magnet %q", first.MagnetLink)
	}
	if first.InfoHash != "0123456789abcdef0123456789abcdef01234567" {
		t.Fatalf("unexpected info hash %q", first.InfoHash)
	}
	if first.Size != "1.4 GiB" || first.Date != "2023-11-14 22:13:20" {
		t.Fatalf("unexpected size/date %q %q", first.Size, first.Date)
	}
	if first.Seeders != 1204 || first.Leechers != 17 {
		t.Fatalf("unexpected peers %d/%d", first.Seeders, first.Leechers)
	}

	second := results[1]
	if second.Size != "Unknown" || second.Date != "Unknown" {
		t.Fatalf("expected Unknown size/date fallbacks, got %q %q", second.Size, second.Date)
	}
	if second.Seeders != 0 || second.Leechers != 0 {
		t.Fatalf("expected zero peers, got %d/%d", second.Seeders, second.Leechers)
	}
}

func TestSearchEmptyListing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>No results found</p></body></html>"))
	})
	results, err := client.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestSearchNonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	_, err := client.Search(context.Background(), "frieren")
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Service Unavailable") {
		t.Fatalf("expected status text in error, got %v", err)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected request")
	})
	if _, err := client.Search(context.Background(), "   "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchHonorsCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingFixture))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Search(ctx, "frieren"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	if _, err := New(config.Nyaa{BaseURL: "not a url"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSearchURLDefaults(t *testing.T) {
	client, err := New(config.Nyaa{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := client.SearchURL("Oshi no Ko 1080p")
	want := "https://nyaa.si/?c=1_2&f=0&o=desc&q=Oshi+no+Ko+1080p&s=seeders"
	if got != want {
		t.Fatalf("SearchURL = %q, want %q", got, want)
	}
}

func TestInfoHash(t *testing.T) {
	if got := infoHash("magnet:?dn=nothing"); got != "" {
		t.Fatalf("expected empty hash, got %q", got)
	}
	if got := infoHash("http://example.com"); got != "" {
		t.Fatalf("expected empty hash for non-magnet, got %q", got)
	}
}
