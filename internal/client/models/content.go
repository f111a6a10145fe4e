package models

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies community content.
type Kind string

const (
	KindRecipe   Kind = "recipe"
	KindTutorial Kind = "tutorial"
	KindBlog     Kind = "blog"
)

// Kinds lists every content kind in display order.
var Kinds = []Kind{KindRecipe, KindTutorial, KindBlog}

// ParseKind accepts singular or plural forms ("recipe", "recipes").
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// Plural returns the collection segment used by the REST API.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Owned is implemented by every resource that carries an owning user.
type Owned interface {
	OwnerID() int64
}

type Recipe struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       *string   `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   int64     `json:"created_by"`
}

func (r Recipe) OwnerID() int64 { return r.CreatedBy }

type Tutorial struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	VideoURL    string    `json:"video_url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   int64     `json:"created_by"`
}

func (t Tutorial) OwnerID() int64 { return t.CreatedBy }

type Blog struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy int64     `json:"created_by"`
}

func (b Blog) OwnerID() int64 { return b.CreatedBy }

// Item is a kind-agnostic view of a content resource used for listings and
// detail pages.
type Item struct {
	Kind      Kind
	ID        int64
	Title     string
	Body      string
	Extra     string
	CreatedAt time.Time
	CreatedBy int64
}

func (i Item) OwnerID() int64 { return i.CreatedBy }

func (r Recipe) Item() Item {
	it := Item{Kind: KindRecipe, ID: r.ID, Title: r.Title, Body: r.Description, CreatedAt: r.CreatedAt, CreatedBy: r.CreatedBy}
	if r.Image != nil {
		it.Extra = *r.Image
	}
	return it
}

func (t Tutorial) Item() Item {
	return Item{Kind: KindTutorial, ID: t.ID, Title: t.Title, Body: t.Description, Extra: t.VideoURL, CreatedAt: t.CreatedAt, CreatedBy: t.CreatedBy}
}

func (b Blog) Item() Item {
	return Item{Kind: KindBlog, ID: b.ID, Title: b.Title, Body: b.Content, CreatedAt: b.CreatedAt, CreatedBy: b.CreatedBy}
}

// Draft is the user-editable part of a resource, as submitted by add/edit
// forms. Field meaning depends on Kind: Body is the description or blog
// content; Extra is the recipe image path or the tutorial video URL.
type Draft struct {
	Kind  Kind
	Title string
	Body  string
	Extra string
}

// Validate performs the form-level checks done before any request is sent.
func (d Draft) Validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(d.Title) == "" {
		problems["title"] = "title is required"
	} else if len(d.Title) > 255 {
		problems["title"] = "title must be at most 255 characters"
	}
	if strings.TrimSpace(d.Body) == "" {
		switch d.Kind {
		case KindBlog:
			problems["content"] = "content is required"
		default:
			problems["description"] = "description is required"
		}
	}
	if d.Kind == KindTutorial && d.Extra != "" && !strings.HasPrefix(d.Extra, "http://") && !strings.HasPrefix(d.Extra, "https://") {
		problems["video_url"] = "video URL must start with http:// or https://"
	}
	return problems
}
