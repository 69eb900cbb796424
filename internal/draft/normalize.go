package draft

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
)

var (
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrUnrecognizedSchema = errors.New("unrecognized payload schema")
)

// PayloadError is returned when producer text does not yield a Draft.
// Raw keeps the original text so the operator can correct it by hand.
type PayloadError struct {
	Raw string
	Err error
}

func (e *PayloadError) Error() string {
	return e.Err.Error()
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

var (
	fencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\\r?\\n?(.*?)```")
	breakPattern = regexp.MustCompile(`(?i)<\s*br\s*/?\s*>|<\s*/\s*(p|div|li|h[1-6])\s*>`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// FromAnalysis normalizes the raw text returned by the AI collaborator.
// Prose and markdown fencing around the JSON object are tolerated.
func FromAnalysis(raw string) (*Draft, error) {
	body := stripFences(raw)
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}
	return normalize(raw, body)
}

// FromManualPayload normalizes a JSON blob pasted by the operator.
func FromManualPayload(raw string) (*Draft, error) {
	return normalize(raw, stripFences(raw))
}

func normalize(raw, body string) (*Draft, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, payloadError(raw, ErrMalformedPayload, err)
	}

	shape, err := detectShape(fields)
	if err != nil {
		return nil, payloadError(raw, ErrUnrecognizedSchema, err)
	}

	d, err := shape.draft()
	if err != nil {
		return nil, payloadError(raw, ErrMalformedPayload, err)
	}
	return d, nil
}

func payloadError(raw string, kind, cause error) error {
	return &PayloadError{Raw: raw, Err: fmt.Errorf("%w: %v", kind, cause)}
}

// shape is one of the known producer layouts.
type shape interface {
	draft() (*Draft, error)
}

// simpleShape: {"title", "price", "description", "tags"}.
type simpleShape struct {
	title       string
	price       json.RawMessage
	description json.RawMessage
	tags        json.RawMessage
}

// expertShape: {"product": {"title", "price_sell"},
// "description": {"long_description"}, "seo": {"keywords": "a, b"}}.
type expertShape struct {
	title       string
	price       json.RawMessage
	description json.RawMessage
	keywords    json.RawMessage
}

// detectShape probes for a nested product title first, then a flat title.
func detectShape(fields map[string]json.RawMessage) (shape, error) {
	if product, ok := objectField(fields, "product"); ok {
		if title, ok := stringField(product, "title"); ok {
			section, _ := objectField(fields, "description")
			seo, _ := objectField(fields, "seo")
			return expertShape{
				title:       title,
				price:       product["price_sell"],
				description: section["long_description"],
				keywords:    seo["keywords"],
			}, nil
		}
	}

	if title, ok := stringField(fields, "title"); ok {
		return simpleShape{
			title:       title,
			price:       fields["price"],
			description: fields["description"],
			tags:        fields["tags"],
		}, nil
	}

	return nil, errors.New("no title found under product.title or title")
}

func (s simpleShape) draft() (*Draft, error) {
	return build(s.title, s.price, s.description, s.tags)
}

func (s expertShape) draft() (*Draft, error) {
	return build(s.title, s.price, s.description, s.keywords)
}

func build(title string, price, description, tags json.RawMessage) (*Draft, error) {
	p, err := parsePrice(price)
	if err != nil {
		return nil, err
	}

	var desc string
	if !isNull(description) {
		if err := json.Unmarshal(description, &desc); err != nil {
			return nil, fmt.Errorf("description: %w", err)
		}
	}

	t, err := parseTags(tags)
	if err != nil {
		return nil, err
	}

	return &Draft{
		Title:       title,
		Price:       p,
		Description: StripMarkup(desc),
		Tags:        t,
	}, nil
}

// parsePrice accepts a JSON number or numeric string holding a
// non-negative integer. Missing means zero.
func parsePrice(raw json.RawMessage) (int, error) {
	if isNull(raw) {
		return 0, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("price: %w", err)
	}

	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("price: %w", err)
	}
	if f < 0 {
		return 0, fmt.Errorf("price: %w", ErrNegativePrice)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("price %s is not a whole amount", n)
	}
	return int(f), nil
}

// parseTags accepts an array of strings or a comma-separated string.
func parseTags(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return CleanTags(list), nil
	}

	var keywords string
	if err := json.Unmarshal(raw, &keywords); err != nil {
		return nil, fmt.Errorf("tags must be a list or a comma-separated string: %w", err)
	}
	return SplitKeywords(keywords), nil
}

// StripMarkup removes HTML-like tags by pattern and returns plain text.
func StripMarkup(s string) string {
	s = breakPattern.ReplaceAllString(s, "\n")
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	// unterminated fence
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexAny(s, "\n{"); i >= 0 {
			s = s[i:]
		}
	}
	return strings.TrimSpace(s)
}

func objectField(fields map[string]json.RawMessage, key string) (map[string]json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// stringField reports a non-blank string value. Other types count as absent.
func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
