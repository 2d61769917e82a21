// Package query turns request parameters into backend-neutral store
// operations. Each backend lowers a Find or Patch into its native form.
package query

import (
	"errors"

	"incywincy-api/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result caps for the fixed-size catalog views.
const (
	AllToysLimit     int64 = 20
	SubCategoryLimit int64 = 2
)

// ErrEmptyPatch is returned when an update names none of the mutable fields.
var ErrEmptyPatch = errors.New("update must set at least one of price, availableQuantity, detailsDescription")

// Field names a listing attribute by its document key.
type Field string

const (
	FieldID                 Field = "_id"
	FieldPhotoURL           Field = "photoURL"
	FieldToyName            Field = "toyName"
	FieldSellerName         Field = "sellerName"
	FieldSellerEmail        Field = "sellerEmail"
	FieldSubCategory        Field = "subCategory"
	FieldPrice              Field = "price"
	FieldRatings            Field = "ratings"
	FieldAvailableQuantity  Field = "availableQuantity"
	FieldDetailsDescription Field = "detailsDescription"
)

// Fields lists every attribute in document order.
var Fields = []Field{
	FieldID,
	FieldPhotoURL,
	FieldToyName,
	FieldSellerName,
	FieldSellerEmail,
	FieldSubCategory,
	FieldPrice,
	FieldRatings,
	FieldAvailableQuantity,
	FieldDetailsDescription,
}

// Op is a filter comparison.
type Op int

const (
	// Equal matches the field value exactly.
	Equal Op = iota
	// ContainsFold matches a case-insensitive substring anywhere in the value.
	// The operand is literal text, never a pattern.
	ContainsFold
)

// Condition is a single filter term. Terms in a filter are ANDed.
type Condition struct {
	Field Field
	Op    Op
	Value interface{}
}

// Sort orders results by a single key.
type Sort struct {
	Field     Field
	Direction Direction
}

// Find describes a read. A nil Projection returns the full document and a
// zero Limit is unbounded.
type Find struct {
	Filter     []Condition
	Projection []Field
	Limit      int64
	Sort       Sort
}

// Assignment sets one field to a value.
type Assignment struct {
	Field Field
	Value interface{}
}

// Patch is a partial update of a single listing.
type Patch struct {
	ID  primitive.ObjectID
	Set []Assignment
}

var (
	allToysProjection  = []Field{FieldSellerName, FieldSubCategory, FieldToyName, FieldPrice, FieldAvailableQuantity}
	editProjection     = []Field{FieldPrice, FieldAvailableQuantity, FieldDetailsDescription}
	trendingProjection = []Field{FieldPhotoURL, FieldToyName, FieldPrice, FieldRatings}
)

// AllToys lists the catalog summary.
func AllToys() Find {
	return Find{
		Projection: allToysProjection,
		Limit:      AllToysLimit,
	}
}

// SearchByName matches listings whose name contains text, ignoring case.
func SearchByName(text string) Find {
	return Find{
		Filter: []Condition{{Field: FieldToyName, Op: ContainsFold, Value: text}},
	}
}

// ToyByID fetches a full listing.
func ToyByID(id primitive.ObjectID) Find {
	return Find{
		Filter: []Condition{IDEquals(id)},
		Limit:  1,
	}
}

// EditForm fetches only the mutable fields of a listing.
func EditForm(id primitive.ObjectID) Find {
	return Find{
		Filter:     []Condition{IDEquals(id)},
		Projection: editProjection,
		Limit:      1,
	}
}

// SellerToys lists a seller's listings. An empty email lists everything.
func SellerToys(email string, dir Direction) Find {
	f := Find{Sort: Sort{Field: FieldPrice, Direction: dir}}
	if email != "" {
		f.Filter = []Condition{{Field: FieldSellerEmail, Op: Equal, Value: email}}
	}
	return f
}

// SubCategory lists the trending cards for a category tag.
func SubCategory(tag string) Find {
	return Find{
		Filter:     []Condition{{Field: FieldSubCategory, Op: Equal, Value: tag}},
		Projection: trendingProjection,
		Limit:      SubCategoryLimit,
	}
}

// IDEquals matches a listing by identifier.
func IDEquals(id primitive.ObjectID) Condition {
	return Condition{Field: FieldID, Op: Equal, Value: id}
}

// EditPatch builds an update that touches only the mutable fields present in u.
func EditPatch(id primitive.ObjectID, u model.ToyUpdate) (Patch, error) {
	p := Patch{ID: id}
	if u.Price != nil {
		p.Set = append(p.Set, Assignment{Field: FieldPrice, Value: *u.Price})
	}
	if u.AvailableQuantity != nil {
		p.Set = append(p.Set, Assignment{Field: FieldAvailableQuantity, Value: *u.AvailableQuantity})
	}
	if u.DetailsDescription != nil {
		p.Set = append(p.Set, Assignment{Field: FieldDetailsDescription, Value: *u.DetailsDescription})
	}
	if len(p.Set) == 0 {
		return Patch{}, ErrEmptyPatch
	}
	return p, nil
}
