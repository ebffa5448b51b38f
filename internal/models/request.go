package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type GenerateVideoRequest struct {
	BrandName string `json:"brandName" validate:"required" example:"Acme"`
	Industry  string `json:"industry" validate:"required" example:"technology"`
	// Description must be sent but may be an empty string.
	Description *string `json:"description" example:"Cloud tooling for small teams"`
	// Duration in seconds. 15, 30 and 60 shape the script; omitted means 30.
	Duration Seconds `json:"duration,omitempty" validate:"omitempty,min=1,max=600" swaggertype:"integer" example:"30"`
}

// ToBrand converts the validated request into pipeline input.
func (r GenerateVideoRequest) ToBrand() BrandRequest {
	brand := BrandRequest{
		BrandName: r.BrandName,
		Industry:  r.Industry,
		Duration:  int(r.Duration),
	}
	if r.Description != nil {
		brand.Description = *r.Description
	}
	if brand.Duration == 0 {
		brand.Duration = DefaultDuration
	}
	return brand
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Seconds is a whole number of seconds. Browser forms post it as a string
// ("30"), so both JSON numbers and numeric strings decode.
type Seconds int

func (s *Seconds) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*s = 0
			return nil
		}
	}

	if n, err := strconv.Atoi(raw); err == nil {
		*s = Seconds(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("duration must be a whole number of seconds, got %s", data)
	}
	*s = Seconds(f)
	return nil
}
