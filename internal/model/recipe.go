package model

import (
	"database/sql/driver"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Recipe categories accepted for persistence.
const (
	CategoryDessert    = "Dessert"
	CategorySoup       = "Soup"
	CategoryMainCourse = "Main Course"
	CategoryStarter    = "Starter"
	CategoryBaby       = "Baby"
)

// DefaultServings is used whenever a recipe arrives without a usable
// servings count.
const DefaultServings = 4

// Categories lists the valid recipe categories.
var Categories = []string{
	CategoryDessert,
	CategorySoup,
	CategoryMainCourse,
	CategoryStarter,
	CategoryBaby,
}

// ValidCategory reports whether c is one of the accepted categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// StringList is stored as a JSON-encoded text column. Decoding is lenient:
// malformed stored text yields an empty list instead of an error, so a bad
// row can never break a read path.
type StringList []string

// Value implements the driver.Valuer interface.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = StringList{}
		return nil
	}

	if err := json.Unmarshal(bytes, l); err != nil {
		log.Printf("[Model] Discarding malformed list column %q: %v", string(bytes), err)
		*l = StringList{}
	}
	if *l == nil {
		*l = StringList{}
	}
	return nil
}

// Recipe is the persisted recipe record. URL is a pointer so that manual
// recipes without a source post stay outside the unique index (NULLs do not
// collide).
type Recipe struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Title        string          `gorm:"size:255;not null" json:"title"`
	Category     string          `gorm:"size:50;not null" json:"category"`
	Ingredients  StringList      `gorm:"type:text;not null;default:'[]'" json:"ingredients"`
	Instructions StringList      `gorm:"type:text;not null;default:'[]'" json:"instructions"`
	Illustration string          `gorm:"size:1024" json:"illustration,omitempty"`
	URL          *string         `gorm:"size:512;uniqueIndex" json:"url,omitempty"`
	VideoURL     string          `gorm:"size:1024" json:"videoUrl,omitempty"`
	PrepTime     string          `gorm:"size:100" json:"prepTime,omitempty"`
	CookTime     string          `gorm:"size:100" json:"cookTime,omitempty"`
	TotalTime    string          `gorm:"size:100" json:"totalTime,omitempty"`
	Servings     int             `json:"servings"`
	Embedding    pgvector.Vector `gorm:"type:vector(3)" json:"-"`
}

// BeforeCreate assigns the id and fills remaining defaults.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Servings <= 0 {
		r.Servings = DefaultServings
	}
	if r.Ingredients == nil {
		r.Ingredients = StringList{}
	}
	if r.Instructions == nil {
		r.Instructions = StringList{}
	}
	return nil
}
