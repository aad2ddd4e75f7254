// Package params turns raw form input into validated query parameters.
package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/models"
)

// MaxLimit is the largest result_limit sent to the service. Larger input
// takes the default.
const MaxLimit = math.MaxInt32

// Field error codes.
const (
	CodeRequired     = "REQUIRED_FIELD_MISSING"
	CodeInvalidType  = "INVALID_TYPE"
	CodeMinViolation = "MINIMUM_VIOLATION"
	CodeMaxViolation = "MAXIMUM_VIOLATION"
	CodeInvalidEnum  = "INVALID_ENUM_VALUE"
)

type Validator struct {
	defaults Defaults
	logger   logger.Logger
}

// NewValidator uses DefaultLandDefaults when defaults is nil.
func NewValidator(defaults Defaults, log logger.Logger) *Validator {
	if defaults == nil {
		defaults = DefaultLandDefaults()
	}
	return &Validator{
		defaults: defaults,
		logger:   log.WithFields(map[string]interface{}{"component": "params"}),
	}
}

func (v *Validator) Defaults() Defaults {
	out, _ := v.defaults.WithOverrides(nil)
	return out
}

// Land never fails on numeric input: anything unusable takes its default.
// Only an unrecognised purpose is rejected.
func (v *Validator) Land(form LandForm) (models.SearchParameters, error) {
	purpose, ok := models.ParsePurpose(form.Purpose)
	if !ok {
		return models.SearchParameters{}, apperrors.NewValidationError([]apperrors.FieldError{{
			Field:   FieldPurpose,
			Message: fmt.Sprintf("unknown purpose %q", strings.TrimSpace(form.Purpose)),
			Code:    CodeInvalidEnum,
		}})
	}

	p := models.SearchParameters{
		Purpose:                  purpose,
		MinSize:                  v.nonNegative(FieldMinSize, form.MinSize),
		MaxSize:                  v.nonNegative(FieldMaxSize, form.MaxSize),
		MinPrice:                 v.nonNegative(FieldMinPrice, form.MinPrice),
		MaxPrice:                 v.nonNegative(FieldMaxPrice, form.MaxPrice),
		LocationPreference:       strings.TrimSpace(form.LocationPreference),
		ConnectivityImportance:   v.weight(FieldConnectivityImportance, form.ConnectivityImportance),
		InfrastructureImportance: v.weight(FieldInfrastructureImportance, form.InfrastructureImportance),
		Limit:                    v.limit(form.Limit),
	}

	// Inverted ranges go to the service unchanged; it decides what they mean.
	if p.MinSize > p.MaxSize {
		v.logger.Warn("min_size exceeds max_size", map[string]interface{}{
			"minSize": p.MinSize, "maxSize": p.MaxSize,
		})
	}
	if p.MinPrice > p.MaxPrice {
		v.logger.Warn("min_price exceeds max_price", map[string]interface{}{
			"minPrice": p.MinPrice, "maxPrice": p.MaxPrice,
		})
	}

	return p, nil
}

// Crop collects every field problem before failing, so the user sees all of them at once.
func (v *Validator) Crop(form CropForm) (models.SoilClimateInput, error) {
	var fieldErrs []apperrors.FieldError
	values := make(map[string]float64, len(CropFieldOrder))

	for _, field := range CropFieldOrder {
		val, fe := parseBounded(field, form.value(field), CropBounds[field])
		if fe != nil {
			fieldErrs = append(fieldErrs, *fe)
			continue
		}
		values[field] = val
	}

	var landID *int
	if raw := strings.TrimSpace(form.LandID); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field:   FieldLandID,
				Message: "must be a positive whole number",
				Code:    CodeInvalidType,
			})
		} else {
			landID = &id
		}
	}

	if len(fieldErrs) > 0 {
		v.logger.Debug("crop input rejected", map[string]interface{}{"fieldErrors": len(fieldErrs)})
		return models.SoilClimateInput{}, apperrors.NewValidationError(fieldErrs)
	}

	return models.SoilClimateInput{
		N:           values[FieldN],
		P:           values[FieldP],
		K:           values[FieldK],
		Temperature: values[FieldTemperature],
		Humidity:    values[FieldHumidity],
		PH:          values[FieldPH],
		Rainfall:    values[FieldRainfall],
		Location:    strings.TrimSpace(form.Location),
		LandID:      landID,
	}, nil
}

// Clamp01 pins w into [0, 1]. NaN becomes 0.
func Clamp01(w float64) float64 {
	switch {
	case math.IsNaN(w), w < 0:
		return 0
	case w > 1:
		return 1
	}
	return w
}

// weight keeps infinities so they clamp to the nearest bound.
func (v *Validator) weight(field, raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if (err != nil && !errors.Is(err, strconv.ErrRange)) || math.IsNaN(f) {
		return v.defaults[field]
	}
	return Clamp01(f)
}

func (v *Validator) nonNegative(field, raw string) float64 {
	if f, ok := parseFinite(raw); ok && f >= 0 {
		return f
	}
	return v.defaults[field]
}

func (v *Validator) limit(raw string) int {
	if f, ok := parseFinite(raw); ok && f >= 1 && f <= MaxLimit {
		return int(math.Floor(f))
	}
	return int(v.defaults[FieldLimit])
}

func parseFinite(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseBounded(field, raw string, b Bound) (float64, *apperrors.FieldError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &apperrors.FieldError{Field: field, Message: "is required", Code: CodeRequired}
	}
	f, ok := parseFinite(raw)
	if !ok {
		return 0, &apperrors.FieldError{Field: field, Message: "must be a number", Code: CodeInvalidType}
	}
	if f < b.Min {
		return 0, &apperrors.FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be between %g and %g", b.Min, b.Max),
			Code:    CodeMinViolation,
		}
	}
	if f > b.Max {
		return 0, &apperrors.FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be between %g and %g", b.Min, b.Max),
			Code:    CodeMaxViolation,
		}
	}
	return f, nil
}
