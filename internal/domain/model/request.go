package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// EventRequest is the schema of POST /events. Only key presence is checked:
// any JSON value, including "" or null, satisfies a required field.
type EventRequest struct {
	Title       json.RawMessage `json:"title" validate:"required"`
	Date        json.RawMessage `json:"date" validate:"required"`
	Description json.RawMessage `json:"description" validate:"required"`
}

// RSVPRequest is the schema of POST /rsvp. EventID is not checked against
// existing events.
type RSVPRequest struct {
	EventID json.RawMessage `json:"event_id" validate:"required"`
	Name    json.RawMessage `json:"name" validate:"required"`
	Email   json.RawMessage `json:"email" validate:"required"`
}

// ParseEvent validates body against EventRequest and returns it as a Document.
func ParseEvent(body []byte) (Document, error) {
	return parse(body, &EventRequest{})
}

// ParseRSVP validates body against RSVPRequest and returns it as a Document.
func ParseRSVP(body []byte) (Document, error) {
	return parse(body, &RSVPRequest{})
}

func parse(body []byte, schema any) (Document, error) {
	doc, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, schema); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if err := validate.Struct(schema); err != nil {
		return nil, missingFields(err)
	}
	return doc, nil
}

// decodeDocument keeps numbers as json.Number so stored values round-trip unchanged.
func decodeDocument(body []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if doc == nil {
		return nil, ErrInvalidBody
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidBody)
	}
	return doc, nil
}

func missingFields(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrMissingFields, err)
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, jsonName(fe.StructField()))
	}
	return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(names, ", "))
}

func jsonName(field string) string {
	switch field {
	case "EventID":
		return "event_id"
	default:
		return strings.ToLower(field)
	}
}
