package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToy_UnmarshalNumericStrings(t *testing.T) {
	var n NewToy
	require.NoError(t, json.Unmarshal([]byte(`{"toyName":"Car","price":"25","ratings":4.5,"availableQuantity":"3"}`), &n))
	assert.Equal(t, "Car", *n.ToyName)
	assert.Equal(t, 25.0, *n.Price)
	assert.Equal(t, 4.5, *n.Ratings)
	assert.Equal(t, int64(3), *n.AvailableQuantity)

	var blank NewToy
	require.NoError(t, json.Unmarshal([]byte(`{"price":"","ratings":null}`), &blank))
	assert.Nil(t, blank.Price)
	assert.Nil(t, blank.Ratings)
	assert.Nil(t, blank.AvailableQuantity)
}

func TestNewToy_UnmarshalRejectsNonNumbers(t *testing.T) {
	for body, field := range map[string]string{
		`{"price":"abc"}`:             "price",
		`{"price":"NaN"}`:             "price",
		`{"ratings":[1]}`:             "ratings",
		`{"availableQuantity":"2.5"}`: "availableQuantity",
		`{"availableQuantity":2.5}`:   "availableQuantity",
	} {
		var n NewToy
		err := json.Unmarshal([]byte(body), &n)
		var typeErr *json.UnmarshalTypeError
		require.True(t, errors.As(err, &typeErr), body)
		assert.Equal(t, field, typeErr.Field, body)
	}
}

func TestToyUpdate_UnmarshalNumericStrings(t *testing.T) {
	var u ToyUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"price":"7.5","availableQuantity":1,"detailsDescription":"new"}`), &u))
	assert.Equal(t, 7.5, *u.Price)
	assert.Equal(t, int64(1), *u.AvailableQuantity)
	assert.Equal(t, "new", *u.DetailsDescription)

	var typeErr *json.UnmarshalTypeError
	err := json.Unmarshal([]byte(`{"price":"free"}`), &u)
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "price", typeErr.Field)
}
