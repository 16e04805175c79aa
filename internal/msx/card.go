// Package msx shapes scraped and stored records into the page/card JSON
// contract of the MSX media-menu client.
package msx

import (
	"time"

	"github.com/anatolykoptev/go-kit/strutil"

	"msxtube/internal/scrape"
)

// Layout is a named visual arrangement. It drives the page-wide template
// descriptor and per-card style hints.
type Layout string

const (
	LayoutGrid    Layout = "grid"
	LayoutList    Layout = "list"
	LayoutCompact Layout = "compact"
)

// ParseLayout maps a view query param onto a Layout; unknown values fall
// back to grid.
func ParseLayout(s string) Layout {
	switch Layout(s) {
	case LayoutList:
		return LayoutList
	case LayoutCompact:
		return LayoutCompact
	default:
		return LayoutGrid
	}
}

const (
	accentColor   = "#FF0000"
	titleMaxRunes = 120
)

// Style carries per-card rendering hints.
type Style struct {
	Height string `json:"height,omitempty"`
}

// Item is one selectable card in the menu.
type Item struct {
	Title       string `json:"title,omitempty"`
	PlayerLabel string `json:"playerLabel,omitempty"`
	Label       string `json:"label,omitempty"`
	Image       string `json:"image,omitempty"`
	Action      string `json:"action,omitempty"`
	Style       *Style `json:"style,omitempty"`
}

// ItemLayout tunes card typography inside a template.
type ItemLayout struct {
	TitleFontSize string `json:"titleFontSize,omitempty"`
	LabelFontSize string `json:"labelFontSize,omitempty"`
	TitleLines    int    `json:"titleLines,omitempty"`
	LabelLines    int    `json:"labelLines,omitempty"`
}

// Template is the page-wide structural descriptor, shared by every card of a
// response.
type Template struct {
	Type        string      `json:"type"`
	Layout      string      `json:"layout"`
	Color       string      `json:"color"`
	ImageFiller string      `json:"imageFiller"`
	Display     string      `json:"display"`
	ItemLayout  *ItemLayout `json:"itemLayout,omitempty"`
}

// PageAction is a headline-level action (view switching).
type PageAction struct {
	Title  string `json:"title"`
	Action string `json:"action"`
}

// Page is a full MSX content page.
type Page struct {
	Type     string       `json:"type"`
	Headline string       `json:"headline"`
	Actions  []PageAction `json:"actions,omitempty"`
	Template *Template    `json:"template,omitempty"`
	Items    []Item       `json:"items"`
}

// TemplateFor returns the shared template descriptor for a layout.
func TemplateFor(l Layout) *Template {
	t := &Template{
		Color:       accentColor,
		ImageFiller: "cover",
		ItemLayout: &ItemLayout{
			TitleFontSize: "medium",
			LabelFontSize: "small",
			TitleLines:    2,
			LabelLines:    2,
		},
	}
	switch l {
	case LayoutList:
		t.Type = "list"
		t.Layout = "0,0,8,1"
		t.Display = "horizontal"
	case LayoutCompact:
		t.Type = "list"
		t.Layout = "0,0,10,1"
		t.Display = "horizontal"
	default:
		t.Type = "separate"
		t.Layout = "0,0,2,4"
		t.Display = "vertical"
	}
	return t
}

func styleFor(l Layout) *Style {
	if l == LayoutGrid {
		return &Style{Height: "medium"}
	}
	return &Style{Height: "small"}
}

// NewPage builds an empty page shell for a layout.
func NewPage(headline string, l Layout) Page {
	return Page{
		Type:     "pages",
		Headline: headline,
		Template: TemplateFor(l),
		Items:    []Item{},
	}
}

// VideoCard projects a scraped video onto a card. exactDate is the output of
// the date normalizer; when normalization fell through (empty or unchanged
// relative text) the label takes the single-line form.
func VideoCard(v scrape.Video, l Layout, exactDate string) Item {
	title := strutil.TruncateWith(v.Title, titleMaxRunes, "…")
	return Item{
		Title:       title,
		PlayerLabel: title,
		Label:       cardLabel(v.Channel, exactDate, v.Published, v.Views),
		Image:       v.Thumbnail,
		Action:      VideoAction(v.ID),
		Style:       styleFor(l),
	}
}

// cardLabel composes the card footer. Normalized date present:
// "{channel}\n{date} • {relative}[ • {views}]"; otherwise
// "{channel} • {relative}" degrading to just the channel.
func cardLabel(channel, exact, rel, views string) string {
	secondary := rel
	if views != "" {
		if secondary != "" {
			secondary += " • " + views
		} else {
			secondary = views
		}
	}
	if exact != "" && exact != rel {
		label := channel + "\n" + exact
		if secondary != "" {
			label += " • " + secondary
		}
		return label
	}
	if secondary == "" {
		return channel
	}
	return channel + " • " + secondary
}

// ErrorPage renders a failure as a single synthetic card so the client needs
// no separate error path.
func ErrorPage(headline, message string) Page {
	p := NewPage(headline, LayoutGrid)
	p.Items = []Item{{
		Title:  headline,
		Label:  message,
		Action: "none",
	}}
	return p
}

// StoredCard projects a persisted favorite or history row onto a card. The
// stored url is itself the action URI the client originally played.
func StoredCard(title, actionURL, image, channel string, createdAt time.Time) Item {
	label := channel
	if !createdAt.IsZero() {
		if label != "" {
			label += "\n"
		}
		label += createdAt.Format("02/01/2006")
	}
	return Item{
		Title:  strutil.TruncateWith(title, titleMaxRunes, "…"),
		Label:  label,
		Image:  image,
		Action: actionURL,
		Style:  &Style{Height: "medium"},
	}
}
