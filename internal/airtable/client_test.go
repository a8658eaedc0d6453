package airtable

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New("key-test", append([]Option{WithBaseURL(srv.URL)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// countSessions swaps newSessionFunc for one that counts constructions.
func countSessions(t *testing.T) *atomic.Int32 {
	t.Helper()
	var n atomic.Int32
	orig := newSessionFunc
	newSessionFunc = func(apiKey string, timeout time.Duration, userAgent string, base http.RoundTripper) *session {
		n.Add(1)
		return orig(apiKey, timeout, userAgent, base)
	}
	t.Cleanup(func() { newSessionFunc = orig })
	return &n
}

type countingTransport struct {
	base  http.RoundTripper
	calls atomic.Int32
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return t.base.RoundTrip(req)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	c, err := New("")
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, IsKind(err, KindConfiguration))
	assert.Contains(t, err.Error(), APIKeyEnv)
}

func TestNewReadsAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv(APIKeyEnv, "key-from-env")

	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{"bases":[]}`)
	}))
	defer srv.Close()

	c, err := New("", WithBaseURL(srv.URL))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ListBases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer key-from-env", auth)
}

func TestListBases(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/meta/bases", r.URL.Path)
		assert.Equal(t, "Bearer key-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		writeJSON(w, http.StatusOK, `{"bases":[{"id":"appA","name":"Ops","permissionLevel":"create"}]}`)
	})

	bases, err := c.ListBases(context.Background())
	require.NoError(t, err)
	require.Len(t, bases, 1)
	assert.Equal(t, Base{ID: "appA", Name: "Ops", PermissionLevel: "create"}, bases[0])
}

func TestListBasesMissingArrayIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	bases, err := c.ListBases(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, bases)
	assert.Empty(t, bases)
}

func TestListTables(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meta/bases/appA/tables", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"tables":[{"id":"tblT","name":"Tasks","primaryFieldId":"fldN",
			"fields":[{"id":"fldN","name":"Name","type":"singleLineText"},
			          {"id":"fldS","name":"Status","type":"singleSelect","options":{"choices":[{"name":"Done"}]}}]}]}`)
	})

	tables, err := c.ListTables(context.Background(), "appA")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "Tasks", tables[0].Name)
	require.Len(t, tables[0].Fields, 2)
	assert.Equal(t, "singleSelect", tables[0].Fields[1].Type)
	assert.Contains(t, tables[0].Fields[1].Options, "choices")
}

func TestListRecordsWithoutOptions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appA/Tasks", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, `{"records":[{"id":"rec1","createdTime":"2024-01-01T00:00:00.000Z","fields":{"Name":"a"}}]}`)
	})

	records, err := c.ListRecords(context.Background(), "appA", "Tasks", ListRecordsOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rec1", records[0].ID)
	assert.Equal(t, "a", records[0].Fields["Name"])
}

func TestListRecordsWithOptions(t *testing.T) {
	formula := "AND({Status}='Done', {Owner} = \"Ana & Bo\")"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "7", q.Get("maxRecords"))
		assert.Equal(t, formula, q.Get("filterByFormula"))
		writeJSON(w, http.StatusOK, `{"records":[]}`)
	})

	limit := 7
	records, err := c.ListRecords(context.Background(), "appA", "Tasks", ListRecordsOptions{MaxRecords: &limit, FilterFormula: &formula})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListRecordsEscapesTableName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appA/My Tasks", r.URL.Path)
		assert.Equal(t, "/appA/My%20Tasks", r.URL.EscapedPath())
		writeJSON(w, http.StatusOK, `{"records":[]}`)
	})

	_, err := c.ListRecords(context.Background(), "appA", "My Tasks", ListRecordsOptions{})
	require.NoError(t, err)
}

func TestCreateRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/appA/Tasks", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		records, ok := body["records"].([]any)
		require.True(t, ok)
		require.Len(t, records, 1)
		assert.Equal(t, map[string]any{"fields": map[string]any{"Name": "New Task", "Estimate": float64(3)}}, records[0])

		writeJSON(w, http.StatusOK, `{"records":[{"id":"recNew","createdTime":"2024-01-02T00:00:00.000Z","fields":{"Name":"New Task","Estimate":3}},{"id":"recIgnored","fields":{}}]}`)
	})

	rec, err := c.CreateRecord(context.Background(), "appA", "Tasks", Fields{"Name": "New Task", "Estimate": 3})
	require.NoError(t, err)
	assert.Equal(t, "recNew", rec.ID)
	assert.Equal(t, "2024-01-02T00:00:00.000Z", rec.CreatedTime)
	assert.Equal(t, "New Task", rec.Fields["Name"])
}

func TestCreateRecordEmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"records":[]}`)
	})

	_, err := c.CreateRecord(context.Background(), "appA", "Tasks", Fields{"Name": "x"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUpstream))
}

func TestUpdateRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/appA/Tasks/recX", r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"fields":{"Status":"Done"}}`, string(raw))

		writeJSON(w, http.StatusOK, `{"id":"recX","createdTime":"2024-01-01T00:00:00.000Z","fields":{"Name":"Task","Status":"Done"}}`)
	})

	rec, err := c.UpdateRecord(context.Background(), "appA", "Tasks", "recX", Fields{"Status": "Done"})
	require.NoError(t, err)
	assert.Equal(t, Record{
		ID:          "recX",
		CreatedTime: "2024-01-01T00:00:00.000Z",
		Fields:      Fields{"Name": "Task", "Status": "Done"},
	}, rec)
}

func TestRecordKeepsExtraTopLevelKeys(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			writeJSON(w, http.StatusOK, `{"id":"recX","createdTime":"2024-01-01T00:00:00.000Z","fields":{"Status":"Done"},"commentCount":3}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"records":[{"id":"rec1","fields":{},"commentCount":1},{"id":"rec2","fields":{"Name":"b"}}]}`)
	})

	rec, err := c.UpdateRecord(context.Background(), "appA", "Tasks", "recX", Fields{"Status": "Done"})
	require.NoError(t, err)
	assert.JSONEq(t, `3`, string(rec.Extra["commentCount"]))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"recX","createdTime":"2024-01-01T00:00:00.000Z","fields":{"Status":"Done"},"commentCount":3}`, string(out))

	recs, err := c.ListRecords(context.Background(), "appA", "Tasks", ListRecordsOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.JSONEq(t, `1`, string(recs[0].Extra["commentCount"]))
	assert.Nil(t, recs[1].Extra)

	out, err = json.Marshal(recs[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"rec2","fields":{"Name":"b"}}`, string(out))
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		kind     Kind
		contains []string
	}{
		{name: "unauthorized", status: 401, body: `{}`, kind: KindAuthentication, contains: []string{"Invalid API key"}},
		{name: "forbidden", status: 403, body: `{}`, kind: KindAuthorization, contains: []string{"Permission denied"}},
		{name: "not found", status: 404, body: `{"error":"NOT_FOUND"}`, kind: KindNotFound, contains: []string{"Not found"}},
		{
			name:     "validation with message",
			status:   422,
			body:     `{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"Field \"Status\" cannot accept the provided value"}}`,
			kind:     KindValidation,
			contains: []string{"Invalid request: ", `Field "Status" cannot accept the provided value`},
		},
		{name: "validation without message", status: 422, body: `{"error":{"type":"INVALID_REQUEST"}}`, kind: KindValidation, contains: []string{"Invalid request: Unknown error"}},
		{name: "validation with empty message", status: 422, body: `{"error":{"type":"INVALID_REQUEST","message":""}}`, kind: KindValidation, contains: []string{"Invalid request: "}},
		{name: "validation with non json body", status: 422, body: `oops`, kind: KindValidation, contains: []string{"Invalid request: Unknown error"}},
		{name: "rate limited", status: 429, body: `{}`, kind: KindRateLimited, contains: []string{"5 requests/second"}},
		{name: "server error", status: 503, body: `upstream unavailable`, kind: KindUpstream, contains: []string{"503", "upstream unavailable"}},
		{name: "teapot", status: 418, body: `short and stout`, kind: KindUpstream, contains: []string{"418", "short and stout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.ListBases(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.NotEmpty(t, apiErr.Error())
			for _, s := range tt.contains {
				assert.Contains(t, apiErr.Error(), s)
			}
		})
	}
}

func TestUndecodableSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>`)
	})

	_, err := c.ListBases(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUpstream))
}

func TestTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.ListBases(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransport))
	assert.Contains(t, err.Error(), "timed out")
}

func TestConnectionFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New("key-test", WithBaseURL(url))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ListTables(context.Background(), "appA")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransport))
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.NotNil(t, apiErr.Unwrap())
}

func TestValidationEmptyMessageIsKept(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"error":{"type":"INVALID_REQUEST","message":""}}`)
	})

	_, err := c.ListBases(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Invalid request: ", err.Error())
}

func TestRedirectsAreNotFollowed(t *testing.T) {
	var elsewhere atomic.Int32
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		elsewhere.Add(1)
		writeJSON(w, http.StatusOK, `{"records":[{"id":"recX","fields":{}}]}`)
	}))
	defer other.Close()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, other.URL+"/appA/Tasks", http.StatusFound)
	})

	_, err := c.CreateRecord(context.Background(), "appA", "Tasks", Fields{"Name": "a"})
	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindUpstream, apiErr.Kind)
	assert.Equal(t, http.StatusFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "302")
	assert.Zero(t, elsewhere.Load())
}

func TestWithUserAgent(t *testing.T) {
	var ua string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, `{"bases":[]}`)
	}, WithUserAgent("ops-bot/2.1"))

	_, err := c.ListBases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ops-bot/2.1", ua)
}

func TestEmptyUserAgentKeepsDefault(t *testing.T) {
	var ua string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, `{"bases":[]}`)
	}, WithUserAgent(""))

	_, err := c.ListBases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, ua)
}

func TestWithTransport(t *testing.T) {
	rt := &countingTransport{base: http.DefaultTransport}
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{"tables":[]}`)
	}, WithTransport(rt))

	_, err := c.ListTables(context.Background(), "appA")
	require.NoError(t, err)
	_, err = c.ListTables(context.Background(), "appB")
	require.NoError(t, err)
	assert.Equal(t, int32(2), rt.calls.Load())
	assert.Equal(t, "Bearer key-test", auth)
}

func TestCloseIsIdempotentAndSessionIsRecreated(t *testing.T) {
	sessions := countSessions(t)
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, `{"bases":[]}`)
	})

	require.NoError(t, c.Close())

	_, err := c.ListBases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), sessions.Load())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Nil(t, c.sess)

	_, err = c.ListBases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), sessions.Load())
	assert.Equal(t, int32(2), calls.Load())
}

func TestConcurrentFirstUseOpensOneSession(t *testing.T) {
	sessions := countSessions(t)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"bases":[],"tables":[]}`)
	})

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			var err error
			if i%2 == 0 {
				_, err = c.ListBases(context.Background())
			} else {
				_, err = c.ListTables(context.Background(), "appA")
			}
			assert.NoError(t, err)
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), sessions.Load())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "rate_limited", KindRateLimited.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
