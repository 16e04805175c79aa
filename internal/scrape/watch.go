package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WatchInfo is the metadata extracted from a single watch page.
type WatchInfo struct {
	Title     string
	Thumbnail string
	Channel   string
	ChannelID string
}

// ExtractWatchInfo pulls og: and itemprop metadata out of a watch page.
// Missing tags degrade to empty fields; only an unparseable document fails.
func ExtractWatchInfo(body []byte) (WatchInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return WatchInfo{}, fmt.Errorf("parse watch page: %w", err)
	}

	var info WatchInfo
	info.Title = metaContent(doc, `meta[property="og:title"]`)
	info.Thumbnail = metaContent(doc, `meta[property="og:image"]`)
	info.ChannelID = metaContent(doc, `meta[itemprop="channelId"]`)

	if sel := doc.Find(`span[itemprop="author"] link[itemprop="name"]`); sel.Length() > 0 {
		info.Channel, _ = sel.First().Attr("content")
	}
	info.Channel = strings.TrimSpace(info.Channel)
	return info, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
