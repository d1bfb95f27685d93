package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/emrgen/storefront/internal/document"
)

// Built-in storefront section renderers. Each renderer owns its settings
// schema and defaults; the document model knows nothing about either.

// DefaultRegistry returns a registry with every built-in section type bound.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("hero", &HeroRenderer{})
	r.Register("rich-text", &RichTextRenderer{})
	r.Register("image-banner", &ImageBannerRenderer{})
	r.Register("product-grid", &ProductGridRenderer{})
	r.Register("gallery", &GalleryRenderer{})
	r.Register("announcement-bar", &AnnouncementBarRenderer{})
	r.Register("header", &HeaderRenderer{})
	r.Register("footer", &FooterRenderer{})

	return r
}

func execute(tpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tpl.Execute(&sb, data); err != nil {
		return "", err
	}

	return sb.String(), nil
}

type HeroRenderer struct{}

var heroTpl = template.Must(template.New("hero").Parse(
	`<section class="hero"><h1>{{.Heading}}</h1><p>{{.Subheading}}</p>{{if .ShowButton}}<a href="{{.ButtonLink}}">{{.ButtonLabel}}</a>{{end}}</section>`))

func (h *HeroRenderer) Defaults() document.Settings {
	return document.Settings{
		"heading":     "Welcome to our store",
		"subheading":  "",
		"showButton":  true,
		"buttonLabel": "Shop now",
		"buttonLink":  "/collections/all",
	}
}

func (h *HeroRenderer) Render(rctx Context, section document.Section) (string, error) {
	d := h.Defaults()
	return execute(heroTpl, struct {
		Heading, Subheading, ButtonLabel string
		ButtonLink                       template.URL
		ShowButton                       bool
	}{
		Heading:     stringSetting(section.Settings, "heading", stringSetting(d, "heading", "")),
		Subheading:  stringSetting(section.Settings, "subheading", ""),
		ShowButton:  boolSetting(section.Settings, "showButton", true),
		ButtonLabel: stringSetting(section.Settings, "buttonLabel", "Shop now"),
		ButtonLink:  template.URL(stringSetting(section.Settings, "buttonLink", "/collections/all")),
	})
}

type RichTextRenderer struct{}

var richTextTpl = template.Must(template.New("rich-text").Parse(
	`<section class="rich-text">{{.Text}}</section>`))

func (r *RichTextRenderer) Defaults() document.Settings {
	return document.Settings{"text": ""}
}

func (r *RichTextRenderer) Render(rctx Context, section document.Section) (string, error) {
	return execute(richTextTpl, struct{ Text string }{
		Text: stringSetting(section.Settings, "text", ""),
	})
}

type ImageBannerRenderer struct{}

var imageBannerTpl = template.Must(template.New("image-banner").Parse(
	`<section class="image-banner"><img src="{{.ImageURL}}" alt="{{.Alt}}"/></section>`))

func (r *ImageBannerRenderer) Defaults() document.Settings {
	return document.Settings{"imageUrl": "", "alt": ""}
}

func (r *ImageBannerRenderer) Render(rctx Context, section document.Section) (string, error) {
	return execute(imageBannerTpl, struct {
		ImageURL template.URL
		Alt      string
	}{
		ImageURL: template.URL(stringSetting(section.Settings, "imageUrl", "")),
		Alt:      stringSetting(section.Settings, "alt", ""),
	})
}

type ProductGridRenderer struct{}

var productGridTpl = template.Must(template.New("product-grid").Parse(
	`<section class="product-grid"><h2>{{.Title}}</h2><ul>{{range .Products}}<li><img src="{{.ImageURL}}"/><span>{{.Title}}</span><span>{{.Price}}</span></li>{{end}}</ul></section>`))

func (r *ProductGridRenderer) Defaults() document.Settings {
	return document.Settings{
		"title":      "Featured products",
		"collection": "all",
		"limit":      8,
	}
}

func (r *ProductGridRenderer) Render(rctx Context, section document.Section) (string, error) {
	if rctx.Catalog == nil {
		return "", fmt.Errorf("no product catalog attached")
	}

	collection := stringSetting(section.Settings, "collection", "all")
	limit := intSetting(section.Settings, "limit", 8)

	products, err := rctx.Catalog.ListProducts(rctx.Ctx, collection, limit)
	if err != nil {
		return "", err
	}

	type productView struct {
		Title, Price string
		ImageURL     template.URL
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{Title: p.Title, Price: p.Price, ImageURL: template.URL(p.ImageURL)})
	}

	return execute(productGridTpl, struct {
		Title    string
		Products []productView
	}{
		Title:    stringSetting(section.Settings, "title", "Featured products"),
		Products: views,
	})
}

type GalleryRenderer struct{}

var galleryTpl = template.Must(template.New("gallery").Parse(
	`<section class="gallery">{{range .Images}}<img src="{{.}}"/>{{end}}</section>`))

func (r *GalleryRenderer) Defaults() document.Settings {
	return document.Settings{"images": []any{}}
}

func (r *GalleryRenderer) Render(rctx Context, section document.Section) (string, error) {
	raw, ok := section.Settings["images"]
	if !ok || raw == nil {
		raw = []any{}
	}

	// a required array field set to anything else is malformed
	items, ok := raw.([]any)
	if !ok {
		return "", fmt.Errorf("images must be a list, got %T", raw)
	}

	images := make([]template.URL, 0, len(items))
	for _, item := range items {
		url, ok := item.(string)
		if !ok {
			return "", fmt.Errorf("image entry must be a url string, got %T", item)
		}
		images = append(images, template.URL(url))
	}

	return execute(galleryTpl, struct{ Images []template.URL }{images})
}

type AnnouncementBarRenderer struct{}

var announcementTpl = template.Must(template.New("announcement-bar").Parse(
	`<aside class="announcement-bar">{{range .Messages}}<p>{{.}}</p>{{end}}</aside>`))

func (r *AnnouncementBarRenderer) Defaults() document.Settings {
	return document.Settings{}
}

// Render renders one message per announcement block.
func (r *AnnouncementBarRenderer) Render(rctx Context, section document.Section) (string, error) {
	messages := make([]string, 0, len(section.Blocks))
	for _, block := range section.Blocks {
		messages = append(messages, stringSetting(block.Settings, "text", ""))
	}

	return execute(announcementTpl, struct{ Messages []string }{messages})
}

type HeaderRenderer struct{}

var headerTpl = template.Must(template.New("header").Parse(
	`<header><span class="logo">{{.Title}}</span><nav>{{range .Links}}<a href="{{.URL}}">{{.Label}}</a>{{end}}</nav></header>`))

func (r *HeaderRenderer) Defaults() document.Settings {
	return document.Settings{"title": "Storefront"}
}

func (r *HeaderRenderer) Render(rctx Context, section document.Section) (string, error) {
	type link struct {
		Label string
		URL   template.URL
	}
	links := make([]link, 0, len(section.Blocks))
	for _, block := range section.Blocks {
		links = append(links, link{
			Label: stringSetting(block.Settings, "label", ""),
			URL:   template.URL(stringSetting(block.Settings, "url", "#")),
		})
	}

	return execute(headerTpl, struct {
		Title string
		Links []link
	}{
		Title: stringSetting(section.Settings, "title", "Storefront"),
		Links: links,
	})
}

type FooterRenderer struct{}

var footerTpl = template.Must(template.New("footer").Parse(
	`<footer><nav>{{range .Links}}<a href="{{.URL}}">{{.Label}}</a>{{end}}</nav><p>{{.Copyright}}</p></footer>`))

func (r *FooterRenderer) Defaults() document.Settings {
	return document.Settings{"copyright": ""}
}

func (r *FooterRenderer) Render(rctx Context, section document.Section) (string, error) {
	type link struct {
		Label string
		URL   template.URL
	}
	links := make([]link, 0, len(section.Blocks))
	for _, block := range section.Blocks {
		links = append(links, link{
			Label: stringSetting(block.Settings, "label", ""),
			URL:   template.URL(stringSetting(block.Settings, "url", "#")),
		})
	}

	return execute(footerTpl, struct {
		Copyright string
		Links     []link
	}{
		Copyright: stringSetting(section.Settings, "copyright", ""),
		Links:     links,
	})
}
