// Package scrape extracts video metadata from YouTube's search results page
// by parsing the embedded ytInitialData payload.
package scrape

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const initialDataMarker = "var ytInitialData = "

// ErrExtractionFailed reports that the embedded-data payload was located but
// could not be parsed. Distinct from an absent marker, which is an expected
// "no results" outcome (blocked request or changed page format).
var ErrExtractionFailed = errors.New("ytInitialData extraction failed")

// Video is one scraped search result. ID is always non-empty; everything
// else is best-effort.
type Video struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Channel   string `json:"channel"`
	Published string `json:"published,omitempty"` // relative phrase, e.g. "2 years ago"
	Views     string `json:"views,omitempty"`
}

// --- ytInitialData fixed navigation path ---
//
// contents → twoColumnSearchResultsRenderer → primaryContents →
// sectionListRenderer → contents[] → itemSectionRenderer → contents[] →
// videoRenderer. Every step is a typed struct so a missing node decodes to
// its zero value and the walk skips it instead of failing.

type initialData struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []sectionContent `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

type sectionContent struct {
	ItemSectionRenderer struct {
		Contents []itemContent `json:"contents"`
	} `json:"itemSectionRenderer"`
}

type itemContent struct {
	VideoRenderer *videoRenderer `json:"videoRenderer"`
}

type videoRenderer struct {
	VideoID   string `json:"videoId"`
	Title     runs   `json:"title"`
	OwnerText runs   `json:"ownerText"`
	Thumbnail struct {
		Thumbnails []struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"thumbnail"`
	PublishedTimeText struct {
		SimpleText string `json:"simpleText"`
	} `json:"publishedTimeText"`
	ViewCountText struct {
		SimpleText string `json:"simpleText"`
	} `json:"viewCountText"`
}

type runs struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (r runs) text() string {
	if len(r.Runs) > 0 {
		return r.Runs[0].Text
	}
	return ""
}

// ExtractVideos locates the ytInitialData payload in a fetched page body and
// collects up to max videoRenderer entries in document order.
//
// Marker absent → (nil, nil): the page changed or the request was blocked,
// treated as zero results. Malformed payload → ErrExtractionFailed.
// Individual items missing fields are skipped or defaulted, never fatal.
func ExtractVideos(body []byte, max int) ([]Video, error) {
	if max <= 0 {
		max = 20
	}
	idx := bytes.Index(body, []byte(initialDataMarker))
	if idx < 0 {
		return nil, nil
	}
	blob := extractJSON(body[idx+len(initialDataMarker):])
	if blob == nil {
		return nil, fmt.Errorf("%w: unterminated JSON object after marker", ErrExtractionFailed)
	}

	var data initialData
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	videos := make([]Video, 0, max)
	for _, section := range data.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents {
		for _, item := range section.ItemSectionRenderer.Contents {
			vr := item.VideoRenderer
			if vr == nil || vr.VideoID == "" {
				continue
			}
			v := Video{
				ID:        vr.VideoID,
				Title:     vr.Title.text(),
				Channel:   vr.OwnerText.text(),
				Published: vr.PublishedTimeText.SimpleText,
				Views:     vr.ViewCountText.SimpleText,
			}
			if v.Channel == "" {
				v.Channel = "Unknown"
			}
			// Last thumbnail is the largest variant.
			if n := len(vr.Thumbnail.Thumbnails); n > 0 {
				v.Thumbnail = vr.Thumbnail.Thumbnails[n-1].URL
			}
			videos = append(videos, v)
			if len(videos) >= max {
				return videos, nil
			}
		}
	}
	return videos, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	esc := false
	for i, c := range b {
		if inStr {
			switch {
			case esc:
				// The escaped character is consumed whatever it is, so a
				// string ending in an escaped backslash still terminates.
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
