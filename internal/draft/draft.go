package draft

import (
	"errors"
	"strings"
)

var ErrNegativePrice = errors.New("price must not be negative")

// Draft is the canonical, editable listing record.
type Draft struct {
	Title       string   `json:"title" yaml:"title"`
	Price       int      `json:"price" yaml:"price"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// Clone returns a deep copy so snapshots never share the tags slice.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.Tags = append([]string{}, d.Tags...)
	return &c
}

// Patch holds independent operator edits; nil fields are left alone.
type Patch struct {
	Title       *string  `json:"title,omitempty"`
	Price       *int     `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Apply edits the draft in place. Descriptions and tags are cleaned the
// same way normalization cleans them.
func (d *Draft) Apply(p Patch) error {
	if p.Price != nil && *p.Price < 0 {
		return ErrNegativePrice
	}
	if p.Title != nil {
		d.Title = strings.TrimSpace(*p.Title)
	}
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.Description != nil {
		d.Description = StripMarkup(*p.Description)
	}
	if p.Tags != nil {
		d.Tags = CleanTags(p.Tags)
	}
	return nil
}

// CleanTags trims every tag and drops the empty ones. Duplicates are kept.
func CleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}

// SplitKeywords turns a comma-separated keyword string into tags.
func SplitKeywords(keywords string) []string {
	return CleanTags(strings.Split(keywords, ","))
}
