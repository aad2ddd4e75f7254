package params

import (
	"math"
	"testing"

	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	return NewValidator(nil, logger.NewTestLogger(t))
}

func validCropForm() CropForm {
	return CropForm{
		N: "90", P: "42", K: "43",
		Temperature: "20.8", Humidity: "82", PH: "6.5", Rainfall: "202.9",
	}
}

// ==========================
// Land search
// ==========================

func TestLand_EmptyFormUsesDefaults(t *testing.T) {
	v := newTestValidator(t)

	got, err := v.Land(LandForm{})
	require.NoError(t, err)

	assert.Equal(t, models.SearchParameters{
		Purpose:                  models.PurposeAny,
		MinSize:                  0,
		MaxSize:                  10000,
		MinPrice:                 0,
		MaxPrice:                 100000000,
		ConnectivityImportance:   0.5,
		InfrastructureImportance: 0.5,
		Limit:                    10,
	}, got)
}

func TestLand_GarbageTakesDefaults(t *testing.T) {
	v := newTestValidator(t)

	got, err := v.Land(LandForm{
		MinSize:                "abc",
		MaxSize:                "-5",
		MinPrice:               "NaN",
		MaxPrice:               "+Inf",
		ConnectivityImportance: "lots",
		Limit:                  "0",
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.MinSize)
	assert.Equal(t, 10000.0, got.MaxSize)
	assert.Equal(t, 0.0, got.MinPrice)
	assert.Equal(t, 100000000.0, got.MaxPrice)
	assert.Equal(t, 0.5, got.ConnectivityImportance)
	assert.Equal(t, 10, got.Limit)

	for _, raw := range []string{"1e30", "9.3e18", "2147483648"} {
		got, err := v.Land(LandForm{Limit: raw})
		require.NoError(t, err)
		assert.Equal(t, 10, got.Limit, "limit %q", raw)
	}

	got, err = v.Land(LandForm{Limit: "2147483647"})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, got.Limit)
}

func TestLand_ParsesValues(t *testing.T) {
	v := newTestValidator(t)

	got, err := v.Land(LandForm{
		Purpose:                  "Agricultural",
		MinSize:                  " 5 ",
		MaxSize:                  "250.5",
		MinPrice:                 "100000",
		MaxPrice:                 "2000000",
		LocationPreference:       " Nashik ",
		ConnectivityImportance:   "0.8",
		InfrastructureImportance: "0.2",
		Limit:                    "25.9",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PurposeAgricultural, got.Purpose)
	assert.Equal(t, 5.0, got.MinSize)
	assert.Equal(t, 250.5, got.MaxSize)
	assert.Equal(t, "Nashik", got.LocationPreference)
	assert.Equal(t, 0.8, got.ConnectivityImportance)
	assert.Equal(t, 0.2, got.InfrastructureImportance)
	assert.Equal(t, 25, got.Limit)
}

func TestLand_ClampsWeights(t *testing.T) {
	v := newTestValidator(t)

	got, err := v.Land(LandForm{ConnectivityImportance: "1.7", InfrastructureImportance: "-0.3"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.ConnectivityImportance)
	assert.Equal(t, 0.0, got.InfrastructureImportance)

	got, err = v.Land(LandForm{ConnectivityImportance: "Inf", InfrastructureImportance: "-Inf"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.ConnectivityImportance)
	assert.Equal(t, 0.0, got.InfrastructureImportance)

	got, err = v.Land(LandForm{ConnectivityImportance: "1e400", InfrastructureImportance: "-1e400"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.ConnectivityImportance)
	assert.Equal(t, 0.0, got.InfrastructureImportance)

	got, err = v.Land(LandForm{ConnectivityImportance: "NaN"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.ConnectivityImportance)
}

func TestLand_InvertedRangePassesThrough(t *testing.T) {
	v := newTestValidator(t)

	got, err := v.Land(LandForm{MinSize: "500", MaxSize: "100", MinPrice: "9", MaxPrice: "1"})
	require.NoError(t, err)
	assert.Equal(t, 500.0, got.MinSize)
	assert.Equal(t, 100.0, got.MaxSize)
	assert.Equal(t, 9.0, got.MinPrice)
	assert.Equal(t, 1.0, got.MaxPrice)
}

func TestLand_UnknownPurpose(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.Land(LandForm{Purpose: "orchard"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	stdErr := apperrors.Normalize(err)
	require.Len(t, stdErr.Fields, 1)
	assert.Equal(t, FieldPurpose, stdErr.Fields[0].Field)
	assert.Equal(t, CodeInvalidEnum, stdErr.Fields[0].Code)
}

func TestLand_AnyPurpose(t *testing.T) {
	v := newTestValidator(t)

	for _, raw := range []string{"", "any", "ANY"} {
		got, err := v.Land(LandForm{Purpose: raw})
		require.NoError(t, err, raw)
		assert.Equal(t, models.PurposeAny, got.Purpose, raw)
	}
}

func TestLand_ConfiguredDefaults(t *testing.T) {
	defaults, unknown := DefaultLandDefaults().WithOverrides(map[string]float64{
		FieldMaxSize: 800,
		FieldLimit:   3,
		"max_acres":  1,
	})
	assert.Equal(t, []string{"max_acres"}, unknown)

	v := NewValidator(defaults, logger.NewNoOpLogger())
	got, err := v.Land(LandForm{})
	require.NoError(t, err)
	assert.Equal(t, 800.0, got.MaxSize)
	assert.Equal(t, 3, got.Limit)
}

func TestDefaults_OverrideGuards(t *testing.T) {
	d, _ := DefaultLandDefaults().WithOverrides(map[string]float64{
		FieldConnectivityImportance: 4,
		FieldLimit:                  0,
	})
	assert.Equal(t, 1.0, d[FieldConnectivityImportance])
	assert.Equal(t, 10.0, d[FieldLimit])

	// the source table is untouched
	assert.Equal(t, 0.5, DefaultLandDefaults()[FieldConnectivityImportance])
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0}, {0, 0}, {0.25, 0.25}, {1, 1}, {1.0001, 1}, {math.Inf(1), 1}, {math.Inf(-1), 0}, {math.NaN(), 0},
	}
	for _, tt := range tests {
		got := Clamp01(tt.in)
		assert.Equal(t, tt.want, got, "Clamp01(%v)", tt.in)
		assert.True(t, got >= 0 && got <= 1)
	}
}

// ==========================
// Crop input
// ==========================

func TestCrop_Valid(t *testing.T) {
	v := newTestValidator(t)

	form := validCropForm()
	form.Location = " Pune "
	form.LandID = "12"

	got, err := v.Crop(form)
	require.NoError(t, err)

	assert.Equal(t, 90.0, got.N)
	assert.Equal(t, 42.0, got.P)
	assert.Equal(t, 43.0, got.K)
	assert.Equal(t, 20.8, got.Temperature)
	assert.Equal(t, 82.0, got.Humidity)
	assert.Equal(t, 6.5, got.PH)
	assert.Equal(t, 202.9, got.Rainfall)
	assert.Equal(t, "Pune", got.Location)
	require.NotNil(t, got.LandID)
	assert.Equal(t, 12, *got.LandID)
}

func TestCrop_BoundsAreInclusive(t *testing.T) {
	v := newTestValidator(t)

	form := CropForm{
		N: "200", P: "0", K: "250",
		Temperature: "-10", Humidity: "100", PH: "14", Rainfall: "3500",
	}
	got, err := v.Crop(form)
	require.NoError(t, err)
	assert.Equal(t, -10.0, got.Temperature)
	assert.Nil(t, got.LandID)
}

func TestCrop_CollectsAllFieldErrors(t *testing.T) {
	v := newTestValidator(t)

	form := validCropForm()
	form.N = ""
	form.PH = "15"
	form.Temperature = "-11"
	form.Rainfall = "lots"
	form.LandID = "-2"

	_, err := v.Crop(form)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	stdErr := apperrors.Normalize(err)
	require.Len(t, stdErr.Fields, 5)

	got := map[string]string{}
	for _, fe := range stdErr.Fields {
		got[fe.Field] = fe.Code
	}
	assert.Equal(t, map[string]string{
		FieldN:           CodeRequired,
		FieldTemperature: CodeMinViolation,
		FieldPH:          CodeMaxViolation,
		FieldRainfall:    CodeInvalidType,
		FieldLandID:      CodeInvalidType,
	}, got)

	// reported in form order
	assert.Equal(t, FieldN, stdErr.Fields[0].Field)
	assert.Equal(t, FieldLandID, stdErr.Fields[4].Field)
}

func TestCrop_PHAboveRangeIsRejected(t *testing.T) {
	v := newTestValidator(t)

	form := validCropForm()
	form.PH = "15"
	_, err := v.Crop(form)

	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	require.Len(t, stdErr.Fields, 1)
	assert.Equal(t, FieldPH, stdErr.Fields[0].Field)
	assert.Equal(t, "must be between 0 and 14", stdErr.Fields[0].Message)
}

func TestCrop_NonFiniteRejected(t *testing.T) {
	v := newTestValidator(t)

	form := validCropForm()
	form.Humidity = "NaN"
	_, err := v.Crop(form)
	require.Error(t, err)
	assert.Equal(t, FieldHumidity, apperrors.Normalize(err).Fields[0].Field)
}
