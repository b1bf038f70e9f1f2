package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const askSchema = `{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message": {"type": "string", "minLength": 1},
		"session_id": {"type": ["integer", "null"], "minimum": 0}
	}
}`

const feedbackSchema = `{
	"type": "object",
	"required": ["message_id", "rating"],
	"properties": {
		"message_id": {"type": "integer", "minimum": 1},
		"rating": {"type": "integer", "minimum": 1, "maximum": 5},
		"comment": {"type": ["string", "null"]}
	}
}`

const symptomsSchema = `{
	"type": "object",
	"required": ["symptoms"],
	"properties": {
		"symptoms": {"type": "string", "minLength": 1}
	}
}`

var (
	askRequestSchema      = mustSchema(askSchema)
	feedbackRequestSchema = mustSchema(feedbackSchema)
	symptomsRequestSchema = mustSchema(symptomsSchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid request schema: %v", err))
	}
	return schema
}

// errBodyTooLarge is returned when the body exceeds the router's size cap.
var errBodyTooLarge = errors.New("request body too large")

// RequestValidationError lists the schema violations of a request body.
type RequestValidationError struct {
	Errors []string
}

func (e *RequestValidationError) Error() string {
	return "Invalid request body: " + strings.Join(e.Errors, "; ")
}

// decodeBody reads the request body, checks it against schema and decodes it into dst.
func decodeBody(r *http.Request, schema *gojsonschema.Schema, dst interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return fmt.Errorf("error reading request body: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &RequestValidationError{Errors: []string{"body is not valid JSON"}}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return &RequestValidationError{Errors: msgs}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &RequestValidationError{Errors: []string{err.Error()}}
	}
	return nil
}

// respondDecodeError writes the status matching a decodeBody failure.
func respondDecodeError(w http.ResponseWriter, err error) {
	var verr *RequestValidationError
	switch {
	case errors.Is(err, errBodyTooLarge):
		RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.As(err, &verr):
		RespondWithError(w, http.StatusBadRequest, verr.Error())
	default:
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
	}
}
