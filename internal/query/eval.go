package query

import (
	"fmt"
	"sort"
	"strings"

	"incywincy-api/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value returns the field of t, or nil when it is absent.
func Value(t *model.ToyListing, f Field) interface{} {
	switch f {
	case FieldID:
		return t.ID
	case FieldPhotoURL:
		return deref(t.PhotoURL)
	case FieldToyName:
		return deref(t.ToyName)
	case FieldSellerName:
		return deref(t.SellerName)
	case FieldSellerEmail:
		return deref(t.SellerEmail)
	case FieldSubCategory:
		return deref(t.SubCategory)
	case FieldPrice:
		return deref(t.Price)
	case FieldRatings:
		return deref(t.Ratings)
	case FieldAvailableQuantity:
		return deref(t.AvailableQuantity)
	case FieldDetailsDescription:
		return deref(t.DetailsDescription)
	}
	return nil
}

// Matches reports whether t satisfies every condition.
func Matches(t *model.ToyListing, conds []Condition) bool {
	for _, c := range conds {
		if !c.matches(Value(t, c.Field)) {
			return false
		}
	}
	return true
}

func (c Condition) matches(v interface{}) bool {
	if v == nil {
		return false
	}
	switch c.Op {
	case Equal:
		if id, ok := v.(primitive.ObjectID); ok {
			want, ok := c.Value.(primitive.ObjectID)
			return ok && id == want
		}
		return v == c.Value
	case ContainsFold:
		s, ok := v.(string)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(fmt.Sprint(c.Value)))
	}
	return false
}

// Project returns a copy of t holding only the identifier and the listed
// fields. A nil projection copies everything.
func Project(t *model.ToyListing, fields []Field) *model.ToyListing {
	if fields == nil {
		return t.Clone()
	}
	src := t.Clone()
	out := &model.ToyListing{ID: src.ID}
	for _, f := range fields {
		switch f {
		case FieldPhotoURL:
			out.PhotoURL = src.PhotoURL
		case FieldToyName:
			out.ToyName = src.ToyName
		case FieldSellerName:
			out.SellerName = src.SellerName
		case FieldSellerEmail:
			out.SellerEmail = src.SellerEmail
		case FieldSubCategory:
			out.SubCategory = src.SubCategory
		case FieldPrice:
			out.Price = src.Price
		case FieldRatings:
			out.Ratings = src.Ratings
		case FieldAvailableQuantity:
			out.AvailableQuantity = src.AvailableQuantity
		case FieldDetailsDescription:
			out.DetailsDescription = src.DetailsDescription
		}
	}
	return out
}

// Apply writes the patch assignments into t and reports whether any value changed.
func Apply(t *model.ToyListing, p Patch) (bool, error) {
	changed := false
	for _, a := range p.Set {
		switch a.Field {
		case FieldPrice:
			v, ok := a.Value.(float64)
			if !ok {
				return false, fmt.Errorf("price must be a number, got %T", a.Value)
			}
			changed = changed || t.Price == nil || *t.Price != v
			t.Price = &v
		case FieldAvailableQuantity:
			v, ok := a.Value.(int64)
			if !ok {
				return false, fmt.Errorf("availableQuantity must be an integer, got %T", a.Value)
			}
			changed = changed || t.AvailableQuantity == nil || *t.AvailableQuantity != v
			t.AvailableQuantity = &v
		case FieldDetailsDescription:
			v, ok := a.Value.(string)
			if !ok {
				return false, fmt.Errorf("detailsDescription must be a string, got %T", a.Value)
			}
			changed = changed || t.DetailsDescription == nil || *t.DetailsDescription != v
			t.DetailsDescription = &v
		default:
			return false, fmt.Errorf("field %s is not updatable", a.Field)
		}
	}
	return changed, nil
}

// Run evaluates f over docs in memory, in the same order a document store
// would return them for the given sort.
func Run(docs []*model.ToyListing, f Find) []*model.ToyListing {
	out := make([]*model.ToyListing, 0)
	for _, d := range docs {
		if Matches(d, f.Filter) {
			out = append(out, d)
		}
	}
	if f.Sort.Direction != Unsorted {
		sort.SliceStable(out, func(i, j int) bool {
			return less(Value(out[i], f.Sort.Field), Value(out[j], f.Sort.Field), f.Sort.Direction)
		})
	}
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	for i, d := range out {
		out[i] = Project(d, f.Projection)
	}
	return out
}

// less orders absent values before present ones when ascending.
func less(a, b interface{}, dir Direction) bool {
	if dir == Descending {
		a, b = b, a
	}
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return true
	case b == nil:
		return false
	}
	switch av := a.(type) {
	case float64:
		bv, _ := b.(float64)
		return av < bv
	case int64:
		bv, _ := b.(int64)
		return av < bv
	case string:
		bv, _ := b.(string)
		return av < bv
	}
	return false
}

func deref[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
