package nyaa

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

const unknown = "Unknown"

const (
	rowXPath    = `//tr[@class="default" or @class="success" or @class="danger"]`
	viewXPath   = `.//a[starts-with(@href, "/view/") and not(contains(@href, "#"))]`
	magnetXPath = `.//a[starts-with(@href, "magnet:")]`
	cellXPath   = `./td[contains(@class, "text-center")]`
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}(:\d{2})?$`)

func parseListing(r io.Reader, base *url.URL) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	rows, err := htmlquery.QueryAll(doc, rowXPath)
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		result, ok := parseRow(row, base)
		if !ok {
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

func parseRow(row *html.Node, base *url.URL) (Result, bool) {
	view := htmlquery.FindOne(row, viewXPath)
	magnet := htmlquery.FindOne(row, magnetXPath)
	if view == nil || magnet == nil {
		return Result{}, false
	}

	title := strings.TrimSpace(htmlquery.SelectAttr(view, "title"))
	if title == "" {
		title = strings.TrimSpace(htmlquery.InnerText(view))
	}
	magnetLink := strings.TrimSpace(htmlquery.SelectAttr(magnet, "href"))
	if title == "" || magnetLink == "" {
		return Result{}, false
	}

	result := Result{
		Title:      title,
		Link:       resolve(base, htmlquery.SelectAttr(view, "href")),
		MagnetLink: magnetLink,
		InfoHash:   infoHash(magnetLink),
		Size:       unknown,
		Date:       unknown,
	}

	sizeSeen := false
	for _, cell := range htmlquery.Find(row, cellXPath) {
		if htmlquery.FindOne(cell, ".//a") != nil {
			continue
		}
		text := strings.TrimSpace(htmlquery.InnerText(cell))
		style := strings.ReplaceAll(htmlquery.SelectAttr(cell, "style"), " ", "")
		switch {
		case strings.Contains(style, "color:green"):
			result.Seeders = atoi(text)
		case strings.Contains(style, "color:red"):
			result.Leechers = atoi(text)
		case datePattern.MatchString(text):
			result.Date = text
		case !sizeSeen && text != "":
			result.Size = text
			sizeSeen = true
		}
	}
	return result, true
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// infoHash extracts the hex info-hash of a magnet link, or "" when the link
// does not carry a btih.
func infoHash(magnet string) string {
	m, err := metainfo.ParseMagnetUri(magnet)
	if err != nil || m.InfoHash == (metainfo.Hash{}) {
		return ""
	}
	return m.InfoHash.HexString()
}

func atoi(text string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(text, ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
