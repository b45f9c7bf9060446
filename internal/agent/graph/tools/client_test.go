package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/status/1234", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("API_KEY"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "shipped"}`))
	}))
	defer srv.Close()

	client := NewStatusClient(srv.URL, "secret", time.Second)
	order, err := client.OrderStatus(context.Background(), 1234)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "shipped"}, order)
}

func TestOrderStatusForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewStatusClient(srv.URL, "wrong", time.Second)
	_, err := client.OrderStatus(context.Background(), 1234)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.NotErrorIs(t, err, ErrAPI)
}

func TestOrderStatusServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewStatusClient(srv.URL, "secret", time.Second)
	_, err := client.OrderStatus(context.Background(), 1234)
	assert.ErrorIs(t, err, ErrAPI)
	assert.NotErrorIs(t, err, ErrAuthentication)
}

func TestOrderStatusConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := NewStatusClient(srv.URL, "secret", time.Second)
	_, err := client.OrderStatus(context.Background(), 1234)
	assert.ErrorIs(t, err, ErrConnectivity)
}

func TestPlantSearchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("min_price"))
		assert.Equal(t, "30", r.URL.Query().Get("max_price"))
		assert.Equal(t, "difficult", r.URL.Query().Get("care_level"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"Fiddle Leaf Fig","price":25.0}]`))
	}))
	defer srv.Close()

	client := NewPlantSearchClient(srv.URL, time.Second)
	plants, err := client.Search(context.Background(), PlantSearchQuery{
		MinPrice:  20,
		MaxPrice:  30,
		CareLevel: "difficult",
	})
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, map[string]any{"name": "Fiddle Leaf Fig", "price": 25.0}, plants[0])
}

func TestPlantSearchMultipleCareLevels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "easy;medium", r.URL.Query().Get("care_level"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewPlantSearchClient(srv.URL, time.Second)
	plants, err := client.Search(context.Background(), PlantSearchQuery{CareLevel: "easy;medium"})
	require.NoError(t, err)
	assert.Empty(t, plants)
}

func TestPlantSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewPlantSearchClient(srv.URL, time.Second)
	_, err := client.Search(context.Background(), PlantSearchQuery{})
	assert.ErrorIs(t, err, ErrAPI)
}

func TestPlantSearchConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewPlantSearchClient(srv.URL, time.Second)
	_, err := client.Search(context.Background(), PlantSearchQuery{})
	assert.ErrorIs(t, err, ErrConnectivity)
}
