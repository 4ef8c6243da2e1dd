package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductType is the category of a bicycle.
type ProductType string

const (
	ProductTypeMountain ProductType = "Mountain"
	ProductTypeRoad     ProductType = "Road"
	ProductTypeHybrid   ProductType = "Hybrid"
	ProductTypeBMX      ProductType = "BMX"
	ProductTypeElectric ProductType = "Electric"
)

// Product is a bicycle offered for sale.
type Product struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Brand       string             `json:"brand" bson:"brand"`
	Price       float64            `json:"price" bson:"price"`
	Type        ProductType        `json:"type" bson:"type"`
	Description string             `json:"description" bson:"description"`
	Quantity    int                `json:"quantity" bson:"quantity"`
	InStock     bool               `json:"inStock" bson:"inStock"`
	IsDeleted   bool               `json:"-" bson:"isDeleted"`
	CreatedBy   primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductUpdate holds the fields of a partial product update. Nil fields are
// left unchanged.
type ProductUpdate struct {
	Name        *string      `bson:"name,omitempty"`
	Brand       *string      `bson:"brand,omitempty"`
	Price       *float64     `bson:"price,omitempty"`
	Type        *ProductType `bson:"type,omitempty"`
	Description *string      `bson:"description,omitempty"`
	Quantity    *int         `bson:"quantity,omitempty"`
	InStock     *bool        `bson:"inStock,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Brand == nil && u.Price == nil && u.Type == nil &&
		u.Description == nil && u.Quantity == nil && u.InStock == nil
}

// SortOrder is the direction of a listing sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ProductQuery narrows and orders a product listing.
type ProductQuery struct {
	Search    string
	Type      ProductType
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortOrder SortOrder
	Page      int
	Limit     int
}
