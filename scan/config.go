package scan

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the category tree driving a scan, loaded from a JSON file.
// Main categories group the subcategories that are actually searched.
type Config struct {
	MainCategories []MainCategory `json:"main_categories"`
	SearchStrategy SearchStrategy `json:"search_strategy"`
}

// MainCategory is one branch of the category tree.
type MainCategory struct {
	Category      string   `json:"category"`
	Subcategories []string `json:"subcategories"`
}

// SearchStrategy tunes how much each category is scraped.
type SearchStrategy struct {
	// MaxProductsPerCategory caps how many products are kept per
	// category. Zero means use DefaultMaxProducts.
	MaxProductsPerCategory int `json:"max_products_per_category"`

	// SkipIfNoResultsThreshold drops categories with this many products
	// or fewer; they carry no demand signal worth analyzing.
	SkipIfNoResultsThreshold int `json:"skip_if_no_results_threshold"`
}

// DefaultMaxProducts caps per-category product counts when the config
// does not set one.
const DefaultMaxProducts = 50

// LoadConfig reads a category config from a JSON file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing category config: %w", err)
	}
	return &cfg, nil
}

// Subcategory is one searchable leaf of the category tree.
type Subcategory struct {
	Main     string
	Name     string
	FullPath string
}

// Subcategories flattens the category tree into searchable leaves.
// FullPath joins main and sub with " > " and keys results and analyses.
func (c *Config) Subcategories() []Subcategory {
	var subs []Subcategory
	for _, main := range c.MainCategories {
		for _, name := range main.Subcategories {
			subs = append(subs, Subcategory{
				Main:     main.Category,
				Name:     name,
				FullPath: main.Category + " > " + name,
			})
		}
	}
	return subs
}

// MaxProducts returns the per-category product cap.
func (c *Config) MaxProducts() int {
	if c.SearchStrategy.MaxProductsPerCategory > 0 {
		return c.SearchStrategy.MaxProductsPerCategory
	}
	return DefaultMaxProducts
}
