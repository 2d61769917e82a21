package model

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	float64Type = reflect.TypeOf(float64(0))
	int64Type   = reflect.TypeOf(int64(0))
)

// UnmarshalJSON accepts numeric fields as JSON numbers or as strings holding
// a number, the way HTML forms submit them.
func (n *NewToy) UnmarshalJSON(data []byte) error {
	type plain NewToy
	aux := struct {
		*plain
		Price             json.RawMessage `json:"price"`
		Ratings           json.RawMessage `json:"ratings"`
		AvailableQuantity json.RawMessage `json:"availableQuantity"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if n.Price, err = decodeFloat("price", aux.Price); err != nil {
		return err
	}
	if n.Ratings, err = decodeFloat("ratings", aux.Ratings); err != nil {
		return err
	}
	n.AvailableQuantity, err = decodeInt("availableQuantity", aux.AvailableQuantity)
	return err
}

// UnmarshalJSON accepts numeric fields as JSON numbers or numeric strings.
func (u *ToyUpdate) UnmarshalJSON(data []byte) error {
	type plain ToyUpdate
	aux := struct {
		*plain
		Price             json.RawMessage `json:"price"`
		AvailableQuantity json.RawMessage `json:"availableQuantity"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if u.Price, err = decodeFloat("price", aux.Price); err != nil {
		return err
	}
	u.AvailableQuantity, err = decodeInt("availableQuantity", aux.AvailableQuantity)
	return err
}

func decodeFloat(field string, raw json.RawMessage) (*float64, error) {
	text, ok, err := numberText(field, raw, float64Type)
	if !ok || err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, numberError(field, raw, float64Type)
	}
	return &f, nil
}

func decodeInt(field string, raw json.RawMessage) (*int64, error) {
	text, ok, err := numberText(field, raw, int64Type)
	if !ok || err != nil {
		return nil, err
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, numberError(field, raw, int64Type)
	}
	return &i, nil
}

// numberText returns the digits of a JSON number or numeric string. Absent,
// null and blank values report ok == false.
func numberText(field string, raw json.RawMessage, want reflect.Type) (string, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", false, nil
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, numberError(field, raw, want)
		}
		s = strings.TrimSpace(s)
		return s, s != "", nil
	case c == '-' || (c >= '0' && c <= '9'):
		return string(raw), true, nil
	default:
		return "", false, numberError(field, raw, want)
	}
}

func numberError(field string, raw json.RawMessage, want reflect.Type) error {
	return &json.UnmarshalTypeError{Value: string(raw), Type: want, Field: field}
}
