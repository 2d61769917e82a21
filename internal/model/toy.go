package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// ToyListing is a single catalog entry. Every attribute is optional so that
// projected results and partially filled inserts serialize without zero values.
type ToyListing struct {
	ID                 primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	PhotoURL           *string            `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	ToyName            *string            `json:"toyName,omitempty" bson:"toyName,omitempty"`
	SellerName         *string            `json:"sellerName,omitempty" bson:"sellerName,omitempty"`
	SellerEmail        *string            `json:"sellerEmail,omitempty" bson:"sellerEmail,omitempty"`
	SubCategory        *string            `json:"subCategory,omitempty" bson:"subCategory,omitempty"`
	Price              *float64           `json:"price,omitempty" bson:"price,omitempty"`
	Ratings            *float64           `json:"ratings,omitempty" bson:"ratings,omitempty"`
	AvailableQuantity  *int64             `json:"availableQuantity,omitempty" bson:"availableQuantity,omitempty"`
	DetailsDescription *string            `json:"detailsDescription,omitempty" bson:"detailsDescription,omitempty"`
}

// Clone returns a deep copy of the listing.
func (t *ToyListing) Clone() *ToyListing {
	if t == nil {
		return nil
	}
	c := ToyListing{ID: t.ID}
	c.PhotoURL = cloneString(t.PhotoURL)
	c.ToyName = cloneString(t.ToyName)
	c.SellerName = cloneString(t.SellerName)
	c.SellerEmail = cloneString(t.SellerEmail)
	c.SubCategory = cloneString(t.SubCategory)
	c.Price = cloneFloat(t.Price)
	c.Ratings = cloneFloat(t.Ratings)
	c.AvailableQuantity = cloneInt(t.AvailableQuantity)
	c.DetailsDescription = cloneString(t.DetailsDescription)
	return &c
}

// NewToy is the accepted body of an add_toy request. Unknown body fields,
// including any client supplied identifier, are dropped.
type NewToy struct {
	PhotoURL           *string  `json:"photoURL"`
	ToyName            *string  `json:"toyName" validate:"required,min=1"`
	SellerName         *string  `json:"sellerName"`
	SellerEmail        *string  `json:"sellerEmail" validate:"required,email"`
	SubCategory        *string  `json:"subCategory"`
	Price              *float64 `json:"price" validate:"omitempty,gte=0"`
	Ratings            *float64 `json:"ratings" validate:"omitempty,gte=0"`
	AvailableQuantity  *int64   `json:"availableQuantity" validate:"omitempty,gte=0"`
	DetailsDescription *string  `json:"detailsDescription"`
}

// Listing converts the request into a listing without an identifier.
func (n NewToy) Listing() *ToyListing {
	return (&ToyListing{
		PhotoURL:           n.PhotoURL,
		ToyName:            n.ToyName,
		SellerName:         n.SellerName,
		SellerEmail:        n.SellerEmail,
		SubCategory:        n.SubCategory,
		Price:              n.Price,
		Ratings:            n.Ratings,
		AvailableQuantity:  n.AvailableQuantity,
		DetailsDescription: n.DetailsDescription,
	}).Clone()
}

// ToyUpdate carries the fields that may change after creation.
type ToyUpdate struct {
	Price              *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	AvailableQuantity  *int64   `json:"availableQuantity,omitempty" validate:"omitempty,gte=0"`
	DetailsDescription *string  `json:"detailsDescription,omitempty"`
}

// InsertResult mirrors the store's insert acknowledgement.
type InsertResult struct {
	Acknowledged bool               `json:"acknowledged"`
	InsertedID   primitive.ObjectID `json:"insertedId"`
}

// UpdateResult mirrors the store's update summary.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult mirrors the store's delete summary.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneInt(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
