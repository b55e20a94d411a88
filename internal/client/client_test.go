package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"example.com/roster/internal/api"
	"example.com/roster/internal/catalog"
	"example.com/roster/internal/domain"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := mux.NewRouter()
	api.NewHandler(domain.NewService(catalog.MustDefault().Roster()), nil).RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t).URL + "/")

	activities, err := c.ListActivities(ctx)
	require.NoError(t, err)
	require.Len(t, activities, 9)
	require.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, activities["Chess Club"].Participants)

	msg, err := c.SignUp(ctx, "Chess Club", "new@x.edu")
	require.NoError(t, err)
	require.Equal(t, "Signed up new@x.edu for Chess Club", msg)

	activities, err = c.ListActivities(ctx)
	require.NoError(t, err)
	require.Contains(t, activities["Chess Club"].Participants, "new@x.edu")

	msg, err = c.Unregister(ctx, "Chess Club", "new@x.edu")
	require.NoError(t, err)
	require.Equal(t, "Unregistered new@x.edu from Chess Club", msg)
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	ctx := context.Background()
	c := New(newServer(t).URL)

	_, err := c.SignUp(ctx, "Basketball Team", "alex@mergington.edu")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Student already signed up for this activity", apiErr.Detail)
	require.ErrorIs(t, err, ErrRosterAPI)

	_, err = c.Unregister(ctx, "Nowhere", "alex@mergington.edu")
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "Activity not found", apiErr.Detail)
}

func TestClientHandlesNonJSONErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListActivities(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
	require.Equal(t, "upstream unavailable", apiErr.Detail)
}
