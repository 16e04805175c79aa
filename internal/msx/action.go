package msx

import (
	"net/url"
	"strconv"
	"strings"
)

// Action URI builders. Every piece of interpolated text goes through
// url.Values so titles, queries and ids can never produce a malformed URI.

const videoPluginBase = "http://msx.benzac.de/plugins/youtube.html"

// VideoAction returns the playback action for a video id.
func VideoAction(id string) string {
	return "video:plugin:" + videoPluginBase + "?id=" + url.QueryEscape(id)
}

// VideoIDFromAction recovers the video id embedded in a playback action URI.
// Returns "" for non-video actions.
func VideoIDFromAction(action string) string {
	rest, ok := strings.CutPrefix(action, "video:plugin:")
	if !ok {
		return ""
	}
	u, err := url.Parse(rest)
	if err != nil {
		return ""
	}
	return u.Query().Get("id")
}

// ChannelAction returns a link action opening the channel page for a scraped
// browse id.
func ChannelAction(channelID string) string {
	return "link:https://www.youtube.com/channel/" + url.PathEscape(channelID)
}

func searchURL(base, query string, page int, l Layout) string {
	v := url.Values{}
	v.Set("input", query)
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	v.Set("view", string(l))
	return base + "/msx_search?" + v.Encode()
}

// SearchReplaceAction re-runs the current search in another view, replacing
// the page in place.
func SearchReplaceAction(base, query string, page int, l Layout) string {
	return "search:replace:" + searchURL(base, query, page, l)
}

// SearchContentAction loads a search page as new content (pagination,
// suggestion follow-up).
func SearchContentAction(base, query string, page int, l Layout) string {
	return "content:" + searchURL(base, query, page, l)
}
