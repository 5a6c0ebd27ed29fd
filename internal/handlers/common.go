package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"messageapp/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

const msgInvalidBody = "invalid request body"

// StrictJSONDecoder is the app's JSON decoder: unknown fields and trailing
// data are rejected.
func StrictJSONDecoder(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// ErrorHandler renders every error in the {error} / {errors} shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	body := fiber.Map{"error": e.Message}
	if len(e.Fields) > 0 {
		body["errors"] = e.Fields
	}
	return c.Status(e.Kind.Status()).JSON(body)
}

// parseBody decodes the JSON body into v, reporting decoding problems as
// validation errors.
func parseBody(c *fiber.Ctx, v interface{}) error {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		return apperr.Validation("request body must be JSON")
	}
	err := c.BodyParser(v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return apperr.Validation(msgInvalidBody, apperr.FieldError{
			Field:   typeErr.Field,
			Message: "must be of type " + typeErr.Type.String(),
		})
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return apperr.Validation(msgInvalidBody, apperr.FieldError{Field: field, Message: "is not allowed"})
	default:
		return apperr.Validation(msgInvalidBody)
	}
}

// paramID reads a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 0)
	if err != nil || id == 0 {
		return 0, apperr.Validation(fmt.Sprintf("invalid %s", name), apperr.FieldError{
			Field:   name,
			Message: "must be a positive integer",
		})
	}
	return uint(id), nil
}

// pageParam reads a zero-based page index. Out-of-range values are legal
// and yield an empty page.
func pageParam(c *fiber.Ctx, name string) (int, error) {
	page, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, apperr.Validation(fmt.Sprintf("invalid %s", name), apperr.FieldError{
			Field:   name,
			Message: "must be an integer",
		})
	}
	return page, nil
}
