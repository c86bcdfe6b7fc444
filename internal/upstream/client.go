package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mazadly/internal/models"

	"github.com/google/uuid"
)

// Client talks to the legacy marketplace REST API the platform is migrating
// off of. The legacy server is inconsistent about response shapes: the same
// endpoint may answer with a bare JSON array or with a {success, data}
// envelope, so every response goes through UnwrapEnvelope before decoding.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// UnwrapEnvelope normalizes a legacy response body: when the body is a
// {success, data} object the inner data is returned, otherwise the body
// passes through unchanged (bare array or object).
func UnwrapEnvelope(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
		if env.Success != nil && !*env.Success {
			return nil, fmt.Errorf("legacy API reported failure")
		}
		return env.Data, nil
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("legacy API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	data, err := UnwrapEnvelope(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// categoryDTO mirrors the legacy nested category shape.
type categoryDTO struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Thumb    *string       `json:"thumb"`
	Children []categoryDTO `json:"children"`
}

// FetchCategories pulls the full category tree and flattens it into rows with
// parent pointers.
func (c *Client) FetchCategories(ctx context.Context) ([]*models.Category, error) {
	var dtos []categoryDTO
	if err := c.get(ctx, "/api/categories", &dtos); err != nil {
		return nil, err
	}
	return flattenCategories(dtos), nil
}

func flattenCategories(dtos []categoryDTO) []*models.Category {
	var flat []*models.Category

	type frame struct {
		dto      categoryDTO
		parentID *uuid.UUID
	}
	stack := make([]frame, 0, len(dtos))
	for i := len(dtos) - 1; i >= 0; i-- {
		stack = append(stack, frame{dto: dtos[i]})
	}

	seen := make(map[uuid.UUID]struct{})
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, dup := seen[f.dto.ID]; dup {
			continue
		}
		seen[f.dto.ID] = struct{}{}

		category := &models.Category{
			ID:       f.dto.ID,
			Name:     f.dto.Name,
			Type:     models.CategoryType(f.dto.Type),
			Thumb:    f.dto.Thumb,
			ParentID: f.parentID,
		}
		flat = append(flat, category)

		parentID := category.ID
		for i := len(f.dto.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{dto: f.dto.Children[i], parentID: &parentID})
		}
	}
	return flat
}

// listingDTO mirrors the legacy listing shape across auctions, tenders, and
// direct sales.
type listingDTO struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	BidType            string     `json:"bidType"`
	ProductCategory    *uuid.UUID `json:"productCategory"`
	ProductSubCategory *uuid.UUID `json:"productSubCategory"`
	StartingPrice      *float64   `json:"startingPrice"`
	CurrentPrice       *float64   `json:"currentPrice"`
	EndingAt           time.Time  `json:"endingAt"`
	Owner              uuid.UUID  `json:"owner"`
	Thumbs             []string   `json:"thumbs"`
}

var bidTypePaths = map[models.BidType]string{
	models.BidTypeAuction:    "/api/auctions",
	models.BidTypeTender:     "/api/tenders",
	models.BidTypeDirectSale: "/api/direct-sales",
}

// FetchListings pulls all listings of one bid type.
func (c *Client) FetchListings(ctx context.Context, bidType models.BidType) ([]*models.Listing, error) {
	path, ok := bidTypePaths[bidType]
	if !ok {
		return nil, fmt.Errorf("unknown bid type %q", bidType)
	}

	var dtos []listingDTO
	if err := c.get(ctx, path, &dtos); err != nil {
		return nil, err
	}

	listings := make([]*models.Listing, 0, len(dtos))
	for _, dto := range dtos {
		listings = append(listings, &models.Listing{
			ID:                 dto.ID,
			Title:              dto.Title,
			Description:        dto.Description,
			BidType:            bidType,
			ProductCategory:    dto.ProductCategory,
			ProductSubCategory: dto.ProductSubCategory,
			StartingPrice:      dto.StartingPrice,
			CurrentPrice:       dto.CurrentPrice,
			EndingAt:           dto.EndingAt,
			OwnerID:            dto.Owner,
			Thumbs:             dto.Thumbs,
		})
	}
	return listings, nil
}
