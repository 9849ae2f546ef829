package main

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"animetracker/internal/testsupport"
)

const frierenListing = `<html><body><table class="table torrent-list"><tbody>
<tr class="default">
	<td><a href="/?c=1_2">cat</a></td>
	<td colspan="2"><a href="/view/1800002" title="[SubsPlease] Sousou no Frieren - 02 (1080p) [ABCD1234].mkv">x</a></td>
	<td class="text-center"><a href="magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567&amp;dn=frieren">m</a></td>
	<td class="text-center">1.4 GiB</td>
	<td class="text-center" data-timestamp="1700000000">2023-11-14 22:13</td>
	<td class="text-center">120</td>
	<td class="text-center">4</td>
	<td class="text-center">900</td>
</tr>
</tbody></table></body></html>`

type showOutput struct {
	ID         int64    `json:"id"`
	Names      []string `json:"names"`
	EndEpisode int      `json:"end_episode"`
	Quality    string   `json:"quality"`
	Downloaded [][2]int `json:"downloaded_episodes"`
	Needed     [][2]int `json:"needed_episodes"`
}

func TestShowCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	created := decodeOutput[showOutput](t, env.run(t, "--json", "shows", "add", "Sousou no Frieren", "--alias", "Frieren", "--end-episode", "3"))
	if created.ID == 0 || len(created.Names) != 2 || created.Quality != "1080p" {
		t.Fatalf("unexpected show %+v", created)
	}
	if len(created.Needed) != 3 || created.Needed[0] != [2]int{1, 1} {
		t.Fatalf("unexpected needed list %v", created.Needed)
	}

	id := strconv.FormatInt(created.ID, 10)
	out := env.run(t, "shows", "toggle", id, "1", "2")
	requireContains(t, out, "S01E02 is now downloaded")

	shows := decodeOutput[[]showOutput](t, env.run(t, "--json", "shows", "list"))
	if len(shows) != 1 || len(shows[0].Downloaded) != 1 || len(shows[0].Needed) != 2 {
		t.Fatalf("unexpected shows after toggle %+v", shows)
	}

	out = env.run(t, "shows", "list")
	requireContains(t, out, "Sousou no Frieren / Frieren")

	out = env.run(t, "shows", "recalc", id)
	requireContains(t, out, "2 episodes needed")

	env.run(t, "shows", "remove", id)
	out = env.run(t, "shows", "list")
	requireContains(t, out, "No shows tracked")

	if _, _, err := runCLI(t, []string{"shows", "remove", id}, env.configPath); err == nil {
		t.Fatal("expected error removing a missing show")
	}
	if _, _, err := runCLI(t, []string{"shows", "toggle", "abc", "1", "1"}, env.configPath); err == nil {
		t.Fatal("expected error for a non-numeric id")
	}
}

func TestKnownAndAbsoluteCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.run(t, "known", "add", "Shingeki no Kyojin", "25", "12")
	requireContains(t, out, "Added known show")

	out = env.run(t, "known", "list")
	requireContains(t, out, "25, 12")

	out = env.run(t, "--json", "absolute", "Shingeki no Kyojin", "2", "3")
	got := decodeOutput[map[string]int](t, out)
	if got["absoluteEpisode"] != 28 {
		t.Fatalf("expected absolute episode 28, got %v", got)
	}

	out = env.run(t, "absolute", "Unknown Show", "2", "3")
	requireContains(t, out, "15")

	if _, _, err := runCLI(t, []string{"known", "add", "Broken", "twelve"}, env.configPath); err == nil {
		t.Fatal("expected error for a non-numeric count")
	}
}

func TestScanCommandRecordsMatches(t *testing.T) {
	index := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(frierenListing))
	}))
	t.Cleanup(index.Close)
	env := setupCLITestEnv(t, testsupport.WithNyaaURL(index.URL))

	env.run(t, "shows", "add", "Sousou no Frieren", "--end-episode", "2")

	summary := decodeOutput[struct {
		Processed int `json:"processed"`
		Found     int `json:"found"`
		Matches   []struct {
			Season  int    `json:"season"`
			Episode int    `json:"episode"`
			Title   string `json:"title"`
		} `json:"matches"`
	}](t, env.run(t, "--json", "scan"))
	if summary.Processed != 2 || summary.Found != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.Matches) != 1 || summary.Matches[0].Episode != 2 {
		t.Fatalf("unexpected matches %+v", summary.Matches)
	}

	out := env.run(t, "magnets")
	requireContains(t, out, "S01E02")

	out = env.run(t, "logs")
	requireContains(t, out, "Found match for Sousou no Frieren S1E2")

	out = env.run(t, "magnets", "--clear")
	requireContains(t, out, "Removed 1 magnet links")

	out = env.run(t, "search", "Sousou no Frieren")
	requireContains(t, out, "1.4 GiB")
}

func TestParseCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.run(t, "parse", "[SubsPlease] Sousou no Frieren - 05 (1080p)")
	requireContains(t, out, "Sousou no Frieren")
	requireContains(t, out, "1080p")

	out = env.run(t, "notify", "test")
	requireContains(t, out, "No notification channel configured")
}
