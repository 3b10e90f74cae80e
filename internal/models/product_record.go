package models

// MaxCurrentPrice and MinCurrentPrice bound ProductRecord.CurrentPrice.
const (
	MinCurrentPrice = 0.0
	MaxCurrentPrice = 999_999_999.99
	MaxRating       = 100.0
	MinRating       = 0.0
	MaxDescriptionLen = 400
	MaxErrorMessageLen = 500
)

// ProductRecord is a row in the product table. product_url is unique;
// re-inserting the same URL is treated as a silent success.
type ProductRecord struct {
	PlatformURL      string
	ProductName      string
	ProductURL       string
	OriginalPrice    string
	CurrentPrice     *float64
	ProductImageURL  string
	Description      string
	Rating           *float64
	Reviews          *int
	InStock          *bool
	Brand            string
	ProductTypeID    string
	SearchedProductID string
}

// ExtractedCandidate is the in-memory shape produced by an extraction
// strategy, before validation and clamping.
type ExtractedCandidate struct {
	PlatformURL      string
	ProductName      string
	ProductURL       string
	OriginalPrice    string
	RawPrice         string
	Currency         string
	CurrentPrice     *float64
	ProductImageURL  string
	Description      string
	Rating           *float64
	Reviews          *int
	InStock          *bool
	Brand            string
	SKU              string
	ProductTypeID    string
	SearchedProductID string

	// SourceStrategy records which strategy produced this candidate, for
	// diagnostics only; it has no bearing on any invariant.
	SourceStrategy string
}

// ToProductRecord copies the fields ProductStore persists, dropping the
// extraction-only fields (RawPrice, Currency, SKU, SourceStrategy).
func (c *ExtractedCandidate) ToProductRecord() ProductRecord {
	return ProductRecord{
		PlatformURL:       c.PlatformURL,
		ProductName:       c.ProductName,
		ProductURL:        c.ProductURL,
		OriginalPrice:     c.OriginalPrice,
		CurrentPrice:      c.CurrentPrice,
		ProductImageURL:   c.ProductImageURL,
		Description:       c.Description,
		Rating:            c.Rating,
		Reviews:           c.Reviews,
		InStock:           c.InStock,
		Brand:             c.Brand,
		ProductTypeID:     c.ProductTypeID,
		SearchedProductID: c.SearchedProductID,
	}
}

// Merge fills any unset (empty/nil) field of c from other, used when
// deduplicating candidates that share a product_url. First non-null wins.
func (c *ExtractedCandidate) Merge(other *ExtractedCandidate) {
	if c.PlatformURL == "" {
		c.PlatformURL = other.PlatformURL
	}
	if c.ProductName == "" {
		c.ProductName = other.ProductName
	}
	if c.OriginalPrice == "" {
		c.OriginalPrice = other.OriginalPrice
	}
	if c.RawPrice == "" {
		c.RawPrice = other.RawPrice
	}
	if c.Currency == "" {
		c.Currency = other.Currency
	}
	if c.CurrentPrice == nil {
		c.CurrentPrice = other.CurrentPrice
	}
	if c.ProductImageURL == "" {
		c.ProductImageURL = other.ProductImageURL
	}
	if c.Description == "" {
		c.Description = other.Description
	}
	if c.Rating == nil {
		c.Rating = other.Rating
	}
	if c.Reviews == nil {
		c.Reviews = other.Reviews
	}
	if c.InStock == nil {
		c.InStock = other.InStock
	}
	if c.Brand == "" {
		c.Brand = other.Brand
	}
	if c.SKU == "" {
		c.SKU = other.SKU
	}
	if c.ProductTypeID == "" {
		c.ProductTypeID = other.ProductTypeID
	}
	if c.SearchedProductID == "" {
		c.SearchedProductID = other.SearchedProductID
	}
	if c.SourceStrategy == "" {
		c.SourceStrategy = other.SourceStrategy
	}
}
