package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Masterminds/semver"
	"github.com/emrgen/storefront/internal/compress"
	"github.com/emrgen/storefront/internal/document"
	"github.com/gobuffalo/packr"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TemplateFormatVersion is the version stamped into exported template blobs.
// Bump the major on breaking envelope changes; imports reject a different major.
const TemplateFormatVersion = "1.0.0"

// TemplateEnvelope is the portable page template format. Exported as gzipped
// JSON so templates can move between stores and installations.
type TemplateEnvelope struct {
	FormatVersion string            `json:"formatVersion"`
	PageType      string            `json:"pageType"`
	Slug          string            `json:"slug"`
	Sections      document.Sections `json:"sections"`
	ExportedAt    time.Time         `json:"exportedAt"`
}

var fallbackBox = packr.NewBox("../../templates")

// FallbackTemplate returns the starter sections bundled for a page type. An
// unknown page type gets the default starter; a missing box file gets an
// empty document.
func FallbackTemplate(pageType string) document.Sections {
	data, err := fallbackBox.Find(pageType + ".json")
	if err != nil {
		data, err = fallbackBox.Find("default.json")
		if err != nil {
			return document.Sections{}
		}
	}

	sections, err := document.UnmarshalSections(data)
	if err != nil {
		logrus.Errorf("malformed bundled template %s: %v", pageType, err)
		return document.Sections{}
	}

	// bundled templates ship without ids
	return document.Paste(document.Sections{}, document.Clipboard(sections))
}

// ExportTemplate packages a page's draft sections as a portable template blob.
func (p *PageService) ExportTemplate(ctx context.Context, id uuid.UUID) ([]byte, error) {
	page, err := p.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}

	envelope := &TemplateEnvelope{
		FormatVersion: TemplateFormatVersion,
		PageType:      page.PageType,
		Slug:          page.Slug,
		Sections:      page.Sections,
		ExportedAt:    time.Now(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}

	return compress.NewGZip().Encode(data)
}

// ImportTemplate creates a new draft page from an exported template blob. All
// section and block ids are regenerated so the import is independent of the
// source page.
func (p *PageService) ImportTemplate(ctx context.Context, storeID uuid.UUID, slug string, blob []byte) (*Page, error) {
	data, err := compress.NewGZip().Decode(blob)
	if err != nil {
		return nil, ErrTemplateFormat
	}

	envelope := &TemplateEnvelope{}
	if err := json.Unmarshal(data, envelope); err != nil {
		return nil, ErrTemplateFormat
	}

	if err := checkTemplateVersion(envelope.FormatVersion); err != nil {
		return nil, err
	}

	if _, err := p.store.GetPageBySlug(ctx, storeID, slug); err == nil {
		return nil, ErrPageExists
	}

	sections := document.Paste(document.Sections{}, document.Clipboard(envelope.Sections))

	page, err := p.CreatePage(ctx, storeID, slug, envelope.PageType, false)
	if err != nil {
		return nil, err
	}

	return p.SaveDraft(ctx, uuid.MustParse(page.ID), sections)
}

func checkTemplateVersion(version string) error {
	got, err := semver.NewVersion(version)
	if err != nil {
		return ErrTemplateVersion
	}

	want := semver.MustParse(TemplateFormatVersion)
	if got.Major() != want.Major() {
		return ErrTemplateVersion
	}

	return nil
}
