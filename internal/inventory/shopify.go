package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAPIVersion = "2025-01"
	defaultTags       = "Expertisé IA"
)

var ErrRemoteRejected = errors.New("inventory rejected the submission")

// RejectedError carries the status and body of a non-success response.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrRemoteRejected, e.Status, e.Body)
}

func (e *RejectedError) Unwrap() error {
	return ErrRemoteRejected
}

// Submission is one draft plus its photos, sent as a single product.
type Submission struct {
	Title       string
	Description string
	Price       int
	Tags        []string
	Photos      []string // base64 JPEG payloads
}

// Client creates products through the Shopify Admin REST API.
type Client struct {
	BaseURL    string
	Token      string
	httpClient *http.Client
}

// NewClient returns a client for the given shop domain (e.g. "shop.myshopify.com").
func NewClient(domain, token, apiVersion string) (*Client, error) {
	if strings.TrimSpace(domain) == "" || strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("shopify domain and access token are required")
	}
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	baseURL := domain
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/") + "/admin/api/" + apiVersion

	return &Client{
		BaseURL: baseURL,
		Token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

type productRequest struct {
	Product product `json:"product"`
}

type product struct {
	Title     string    `json:"title"`
	BodyHTML  string    `json:"body_html"`
	Status    string    `json:"status"`
	Published bool      `json:"published"`
	Variants  []variant `json:"variants"`
	Tags      string    `json:"tags"`
	Images    []image   `json:"images,omitempty"`
}

type variant struct {
	Price string `json:"price"`
	// null means stock is not tracked, so the listing is purchasable at once
	InventoryManagement *string `json:"inventory_management"`
}

type image struct {
	Attachment string `json:"attachment"`
}

// Create publishes the submission as an active product and returns its id.
func (c *Client) Create(ctx context.Context, sub Submission) (string, error) {
	tags := strings.Join(sub.Tags, ", ")
	if tags == "" {
		tags = defaultTags
	}

	images := make([]image, 0, len(sub.Photos))
	for _, photo := range sub.Photos {
		images = append(images, image{Attachment: photo})
	}

	body, err := json.Marshal(productRequest{
		Product: product{
			Title:     sub.Title,
			BodyHTML:  bodyHTML(sub.Description),
			Status:    "active",
			Published: true,
			Variants:  []variant{{Price: strconv.Itoa(sub.Price)}},
			Tags:      tags,
			Images:    images,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/products.json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.Token)

	slog.Info("Submitting product", "title", sub.Title, "price", sub.Price, "photos", len(sub.Photos))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Shopify API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Shopify response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("Shopify rejected product", "status", resp.StatusCode, "body", string(respBody))
		return "", &RejectedError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var created struct {
		Product struct {
			ID json.Number `json:"id"`
		} `json:"product"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("failed to decode Shopify response: %w", err)
	}
	if created.Product.ID == "" {
		return "", fmt.Errorf("shopify response carries no product id")
	}

	slog.Info("Product is live", "id", created.Product.ID.String())
	return created.Product.ID.String(), nil
}

// bodyHTML renders the plain-text description as escaped HTML paragraphs.
func bodyHTML(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}
	var b strings.Builder
	for _, para := range strings.Split(description, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
