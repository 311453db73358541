package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestListTypePaths(t *testing.T) {
	require.Equal(t, "/students/assignments/pending", Pending.Path())
	require.Equal(t, "/students/assignments/missed", Missed.Path())
	require.Equal(t, "/students/assignments/submitted", Submitted.Path())
	require.Equal(t, "/students/assignment/unsubmit/a%2Fb", UnsubmitPath("a/b"))

	parsed, err := ParseListType(" submitted ")
	require.NoError(t, err)
	require.Equal(t, Submitted, parsed)

	_, err = ParseListType("graded")
	require.Error(t, err)
}

func TestFetchAssignmentsDecodesData(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/students/assignments/submitted", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.Equal(t, "corr-1", r.Header.Get("X-Correlation-ID"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":[{
			"_id":"a1","AssignmentName":"HW1","PostedBy":{"Name":"Ms. K"},
			"PostedOn":"2024-01-01T10:00:00Z","DueTimestamp":"2024-01-10T23:59:00Z",
			"Batches":["B1"],"Questions":["q1","q2"],"SubmittedBy":["s1"]}]}`))
	})

	client, err := New(server.URL,
		WithToken("secret"),
		WithCorrelation(func(context.Context) string { return "corr-1" }),
	)
	require.NoError(t, err)

	assignments, err := client.FetchAssignments(context.Background(), Submitted)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, "a1", assignments[0].ID)
	require.Equal(t, "HW1", assignments[0].AssignmentName)
	require.Equal(t, "Ms. K", assignments[0].PostedBy.Name)
	require.Equal(t, []string{"q1", "q2"}, assignments[0].Questions)
	require.Equal(t, []string{"s1"}, assignments[0].SubmittedBy)
}

func TestFetchAssignmentsEmptyList(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":[]}`))
	})

	client, err := New(server.URL)
	require.NoError(t, err)

	assignments, err := client.FetchAssignments(context.Background(), Missed)
	require.NoError(t, err)
	require.NotNil(t, assignments)
	require.Empty(t, assignments)
}

func TestFetchAssignmentsApplicationFailure(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"invalid assignment list type"}`))
	})

	client, err := New(server.URL)
	require.NoError(t, err)

	_, err = client.FetchAssignments(context.Background(), Pending)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "invalid assignment list type", apiErr.Message)
}

func TestFetchAssignmentsRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"not json":        `<html>bad gateway</html>`,
		"missing message": `{"success":true,"data":[]}`,
		"missing data":    `{"success":true,"message":"ok"}`,
		"card without id": `{"success":true,"message":"ok","data":[{"AssignmentName":"x"}]}`,
	}

	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			client, err := New(server.URL)
			require.NoError(t, err)

			_, err = client.FetchAssignments(context.Background(), Pending)
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestUnsubmitResults(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPut, r.Method)
			require.Equal(t, "/students/assignment/unsubmit/a1", r.URL.Path)
			_, _ = w.Write([]byte(`{"success":true,"message":"Assignment unsubmitted successfully"}`))
		})

		client, err := New(server.URL)
		require.NoError(t, err)

		result, err := client.Unsubmit(context.Background(), "a1")
		require.NoError(t, err)
		require.True(t, result.Success)
		require.Equal(t, "Assignment unsubmitted successfully", result.Message)
	})

	t.Run("conflict carries server message", func(t *testing.T) {
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"success":false,"message":"cannot unsubmit after the due timestamp"}`))
		})

		client, err := New(server.URL)
		require.NoError(t, err)

		result, err := client.Unsubmit(context.Background(), "a1")
		require.NoError(t, err)
		require.False(t, result.Success)
		require.Equal(t, "cannot unsubmit after the due timestamp", result.Message)
	})
}

func TestUnsubmitTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := New(url, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = client.Unsubmit(context.Background(), "a1")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrMalformedResponse))
}

func TestCancelledContextSkipsRequest(t *testing.T) {
	called := false
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	client, err := New(server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.FetchAssignments(ctx, Pending)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestForTokenDoesNotMutateParent(t *testing.T) {
	client, err := New("http://example.test/", WithToken("a"))
	require.NoError(t, err)

	derived := client.ForToken("b")
	require.Equal(t, "a", client.token)
	require.Equal(t, "b", derived.token)
	require.Equal(t, "http://example.test", derived.baseURL)

	_, err = New("  ")
	require.Error(t, err)
}
