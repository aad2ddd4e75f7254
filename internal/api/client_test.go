package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/common/config"
	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const testToken = "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b"

func testCred() *models.Credential {
	return &models.Credential{Token: testToken, Username: "farmer"}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.APIConfig{
		BaseURL:    srv.URL,
		Timeout:    2000,
		AuthScheme: "Token",
		UserAgent:  "agriwise-test",
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const cropOK = `{
	"success": true,
	"response_time_ms": 31,
	"recommendation": {
		"id": 11,
		"recommended_crop": "rice",
		"confidence": 0.95,
		"confidence_percentage": "95.00%",
		"top_5_recommendations": [
			{"crop": "rice", "confidence": 0.95},
			{"crop": "jute", "confidence": 0.03},
			{"crop": "maize", "confidence": 0.01}
		],
		"soil_suitability": "excellent"
	},
	"input_data": {"nitrogen": 90}
}`

const landOK = `{
	"success": true,
	"count": 2,
	"response_time_ms": 12.5,
	"recommendations": [
		{"land_id": 4, "name": "North Plot", "city": "Nashik", "latitude": 19.99, "longitude": 73.78,
		 "size_in_acres": 12, "total_price": 2400000, "price_per_acre": 200000, "score": 88.4,
		 "subscores": {"size": 90, "price": 80}, "recommendation_level": "Highly Recommended",
		 "matching_features": ["Irrigation"], "concerns": []},
		{"land_id": 9, "name": "River Field", "city": "Pune", "latitude": null, "longitude": null,
		 "size_in_acres": 30, "total_price": 9000000, "price_per_acre": 300000, "score": 61,
		 "subscores": {"size": 70}, "recommendation_level": "Consider",
		 "matching_features": [], "concerns": ["Far from highway"]}
	]
}`

// ==========================
// Core Functionality Tests
// ==========================

func TestRecommendCrop_Success(t *testing.T) {
	var gotAuth, gotUA, gotReqID, gotCT string
	var gotBody map[string]interface{}

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/crops/recommend/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get("X-Request-ID")
		gotCT = r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, cropOK)
	})

	out, err := c.RecommendCrop(context.Background(), testCred(), models.SoilClimateInput{
		N: 90, P: 42, K: 43, Temperature: 20.8, Humidity: 82, PH: 6.5, Rainfall: 202.9,
	})
	require.NoError(t, err)

	assert.Equal(t, "Token "+testToken, gotAuth)
	assert.Equal(t, "agriwise-test", gotUA)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, 90.0, gotBody["N"])
	assert.Equal(t, 6.5, gotBody["ph"])
	assert.NotContains(t, gotBody, "land_id")

	assert.Equal(t, "rice", out.Recommendation.RecommendedCrop)
	assert.Equal(t, "95.00%", out.Recommendation.ConfidencePercentage)
	assert.Len(t, out.Recommendation.Top5Recommendations, 3)
	assert.Equal(t, 31.0, out.ServerTimeMS)
	assert.GreaterOrEqual(t, out.ResponseTimeMS, int64(0))
}

func TestRecommendLands_Success(t *testing.T) {
	var gotBody map[string]interface{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/lands/recommend/", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, landOK)
	})

	out, err := c.RecommendLands(context.Background(), testCred(), models.SearchParameters{
		MaxSize: 10000, MaxPrice: 100000000, ConnectivityImportance: 0.5, InfrastructureImportance: 0.5, Limit: 10,
	})
	require.NoError(t, err)

	assert.NotContains(t, gotBody, "purpose")
	assert.Equal(t, 10.0, gotBody["limit"])

	require.Len(t, out.Recommendations, 2)
	assert.Equal(t, 4, out.Recommendations[0].LandID)
	assert.Equal(t, 9, out.Recommendations[1].LandID)
	require.NotNil(t, out.Recommendations[0].Latitude)
	assert.Nil(t, out.Recommendations[1].Latitude)
	assert.Equal(t, 12.5, out.ServerTimeMS)
}

func TestRecommendLands_SlowServerTiming(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(60 * time.Millisecond)
		writeJSON(w, http.StatusOK, `{"success":true,"recommendations":[]}`)
	})

	out, err := c.RecommendLands(context.Background(), testCred(), models.SearchParameters{Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, out.Recommendations)
	assert.NotNil(t, out.Recommendations)
	assert.GreaterOrEqual(t, out.ResponseTimeMS, int64(60))
}

func TestMissingCredential_NoNetworkIO(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusOK, cropOK)
	})

	ctx := context.Background()
	_, err := c.RecommendCrop(ctx, nil, models.SoilClimateInput{})
	assert.True(t, apperrors.IsAuth(err))

	_, err = c.RecommendLands(ctx, &models.Credential{Token: ""}, models.SearchParameters{})
	assert.True(t, apperrors.IsAuth(err))

	_, err = c.CropHistory(ctx, &models.Credential{Token: "x", ExpiresAt: time.Now().Add(-time.Second)})
	assert.True(t, apperrors.IsAuth(err))

	_, err = c.CropStats(ctx, nil)
	assert.True(t, apperrors.IsAuth(err))

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

// ==========================
// Failure Taxonomy Tests
// ==========================

func TestFailureMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    apperrors.ErrorCode
		message string
	}{
		{"401", http.StatusUnauthorized, `{"detail":"Invalid token."}`, apperrors.ErrCodeAuth, apperrors.DefaultAuthMessage},
		{"403 permission denied", http.StatusForbidden, `{"detail":"You do not have permission to perform this action."}`,
			apperrors.ErrCodeRequest, "You do not have permission to perform this action."},
		{"400 string error", http.StatusBadRequest, `{"error":"Invalid purpose"}`, apperrors.ErrCodeRequest, "Invalid purpose"},
		{"400 field map", http.StatusBadRequest, `{"error":{"ph":["Ensure this value is less than or equal to 14."]}}`,
			apperrors.ErrCodeRequest, "ph: Ensure this value is less than or equal to 14."},
		{"404 no body", http.StatusNotFound, ``, apperrors.ErrCodeRequest, apperrors.DefaultRequestMessage},
		{"500", http.StatusInternalServerError, `{"error":"Internal server error: boom","success":false}`, apperrors.ErrCodeUnknown, apperrors.DefaultUnknownMessage},
		{"503", http.StatusServiceUnavailable, `{"error":"Crop recommender not available"}`, apperrors.ErrCodeUnknown, apperrors.DefaultUnknownMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.RecommendCrop(context.Background(), testCred(), models.SoilClimateInput{})
			require.Error(t, err)
			stdErr := apperrors.Normalize(err)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.message, stdErr.Message)
			assert.Equal(t, tt.status, stdErr.StatusCode)
		})
	}
}

func TestTransportFailure(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := c.RecommendLands(context.Background(), testCred(), models.SearchParameters{})
	require.Error(t, err)
	assert.True(t, apperrors.IsRequest(err))
	assert.Equal(t, apperrors.DefaultRequestMessage, apperrors.Normalize(err).Message)
}

func TestCancelledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.RecommendCrop(ctx, testCred(), models.SoilClimateInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing recommendation", `{"success":true}`},
		{"confidence out of range", `{"recommendation":{"recommended_crop":"rice","confidence_percentage":"95%",
			"soil_suitability":"good","top_5_recommendations":[{"crop":"rice","confidence":2}]}}`},
		{"top five not ordered", `{"recommendation":{"recommended_crop":"rice","confidence_percentage":"50%",
			"soil_suitability":"good","top_5_recommendations":[{"crop":"rice","confidence":0.5},{"crop":"jute","confidence":0.6}]}}`},
		{"head differs", `{"recommendation":{"recommended_crop":"rice","confidence_percentage":"50%",
			"soil_suitability":"good","top_5_recommendations":[{"crop":"jute","confidence":0.5}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})
			_, err := c.RecommendCrop(context.Background(), testCred(), models.SoilClimateInput{})
			require.Error(t, err)
			assert.True(t, apperrors.IsUnknown(err), err.Error())
		})
	}
}

func TestRecommendLands_SuccessFalse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false}`)
	})
	_, err := c.RecommendLands(context.Background(), testCred(), models.SearchParameters{})
	assert.True(t, apperrors.IsUnknown(err))
}

func TestCustomAuthScheme(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{"recommendations":[]}`)
	}))
	defer srv.Close()

	c, err := NewClient(config.APIConfig{BaseURL: srv.URL + "/", AuthScheme: "Bearer"}, logger.NewNoOpLogger(),
		WithHTTPClient(srv.Client(), "x"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL, c.BaseURL())

	_, err = c.CropHistory(context.Background(), testCred())
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+testToken, gotAuth)
}
