package atlas

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const latestBody = `[
	[1, 1001, "x", "y", "z", [12.3, 1700000000]],
	[1, "1002", "x", "y", "z", null],
	[1, 1003]
]`

func TestLatest(t *testing.T) {
	var gotPath, gotAccept string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(latestBody))
	}))
	defer s.Close()

	c := NewClient(WithBaseURL(s.URL+"/api/v1/"), WithTimeout(2*time.Second))
	records, err := c.Latest(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/measurement/1234/latest/", gotPath)
	assert.Equal(t, "application/json", gotAccept)
	require.Len(t, records, 3)

	id, err := records[0].ProbeID()
	require.NoError(t, err)
	assert.Equal(t, "1001", id)
	assert.JSONEq(t, `[12.3, 1700000000]`, string(records[0].Result()))

	id, err = records[1].ProbeID()
	require.NoError(t, err)
	assert.Equal(t, "1002", id)
	assert.Nil(t, records[1].Result())

	assert.Nil(t, records[2].Result())
	_, err = Record{}.ProbeID()
	assert.Error(t, err)
}

func TestLatestUnexpectedStatus(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer s.Close()

	_, err := NewClient(WithBaseURL(s.URL)).Latest(context.Background(), "1234")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestLatestTimeout(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer s.Close()

	_, err := NewClient(WithBaseURL(s.URL), WithTimeout(50*time.Millisecond)).Latest(context.Background(), "1234")
	assert.Error(t, err)
}

func TestLatestRequiresID(t *testing.T) {
	_, err := NewClient().Latest(context.Background(), "")
	assert.Error(t, err)
}
