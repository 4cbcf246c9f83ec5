package api

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON name, or the lowercased Go name
// for query structs.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := strings.Split(f.Tag.Get("json"), ",")[0]; name != "" && name != "-" {
			return name
		}
		return strings.ToLower(f.Name)
	})
	return v
}

type cityQuery struct {
	City  string `validate:"required,max=100"`
	Units string `validate:"omitempty,oneof=metric imperial celsius fahrenheit c f"`
}

func parseCityQuery(r *http.Request) (cityQuery, error) {
	q := r.URL.Query()
	req := cityQuery{
		City:  strings.TrimSpace(q.Get("city")),
		Units: strings.ToLower(strings.TrimSpace(q.Get("units"))),
	}
	return req, validate.Struct(req)
}

type coordsQuery struct {
	Lat   *float64 `validate:"required,gte=-90,lte=90"`
	Lng   *float64 `validate:"required,gte=-180,lte=180"`
	Units string   `validate:"omitempty,oneof=metric imperial celsius fahrenheit c f"`
}

func parseCoordsQuery(r *http.Request) (coordsQuery, error) {
	q := r.URL.Query()
	req := coordsQuery{Units: strings.ToLower(strings.TrimSpace(q.Get("units")))}

	var err error
	if req.Lat, err = optionalFloat(q.Get("lat"), "lat"); err != nil {
		return req, err
	}
	if req.Lng, err = optionalFloat(q.Get("lng"), "lng"); err != nil {
		return req, err
	}
	return req, validate.Struct(req)
}

func optionalFloat(raw, name string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &f, nil
}

type suggestionQuery struct {
	Q string `validate:"max=100"`
}

type dashboardQuery struct {
	City  string `validate:"max=100"`
	Units string `validate:"omitempty,oneof=metric imperial celsius fahrenheit c f"`
}

type prefsBody struct {
	LastLocation string `json:"last_location" validate:"required,max=100"`
	Units        string `json:"units" validate:"omitempty,oneof=metric imperial celsius fahrenheit c f"`
}

// validationMessage turns validator errors into a short client-facing text.
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "oneof":
			parts = append(parts, field+" must be one of "+fe.Param())
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(parts, "; ")
}
