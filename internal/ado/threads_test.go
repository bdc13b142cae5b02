package ado

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threadsPayload() map[string]any {
	return map[string]any{"value": []any{
		map[string]any{
			"id": 1, "status": "active",
			"threadContext": map[string]any{"filePath": "/src/pay.go", "rightFileStart": map[string]any{"line": 42}},
			"comments": []any{
				map[string]any{"id": 1, "author": map[string]any{"displayName": "Ana"}, "content": "nil check?", "commentType": "text"},
				map[string]any{"id": 2, "author": map[string]any{"displayName": systemAuthor}, "content": "policy", "commentType": "system"},
			},
		},
		map[string]any{"id": 2, "status": "fixed", "comments": []any{}},
		map[string]any{"id": 3, "status": "active", "isDeleted": true},
		map[string]any{"id": 4, "status": "closed"},
	}}
}

func TestClient_ListThreads_ActiveOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contoso/web/_apis/git/repositories/shop/pullrequests/77/threads", r.URL.Path)
		writeJSON(w, threadsPayload())
	}))
	defer srv.Close()

	client, _ := testClient(t, srv)
	threads, err := client.ListThreads(context.Background(), "shop", 77, true)
	require.NoError(t, err)
	require.Len(t, threads, 1)

	th := threads[0]
	assert.Equal(t, "/src/pay.go", th.FilePath)
	assert.Equal(t, 42, th.Line)
	human := th.HumanComments()
	require.Len(t, human, 1)
	assert.Equal(t, "Ana", human[0].Author)
}

func TestClient_GetThread_IncludesResolved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, threadsPayload())
	}))
	defer srv.Close()

	client, _ := testClient(t, srv)
	th, err := client.GetThread(context.Background(), "shop", 77, 2)
	require.NoError(t, err)
	assert.Equal(t, "fixed", th.Status)

	_, err = client.GetThread(context.Background(), "shop", 77, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ReplyAndResolve(t *testing.T) {
	var replied, resolved bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/contoso/web/_apis/git/repositories/shop/pullrequests/77/threads/5/comments":
			replied = true
			assert.Contains(t, body["content"], "Done, added the nil check.")
			assert.Contains(t, body["content"], AttributionFooter)
			assert.EqualValues(t, 1, body["commentType"])
		case r.Method == http.MethodPatch && r.URL.Path == "/contoso/web/_apis/git/repositories/shop/pullrequests/77/threads/5":
			resolved = true
			assert.Equal(t, "fixed", body["status"])
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, map[string]any{"id": 5})
	}))
	defer srv.Close()

	client, _ := testClient(t, srv)
	require.NoError(t, client.ReplyToThread(context.Background(), "shop", 77, 5, "Done, added the nil check."))
	require.NoError(t, client.ResolveThread(context.Background(), "shop", 77, 5))
	assert.True(t, replied)
	assert.True(t, resolved)
}
