package netx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadPresigned(t *testing.T) {
	photo := []byte("not really a jpeg")

	t.Run("puts the body to the presigned url", func(t *testing.T) {
		var gotMethod, gotCT string
		var gotBody []byte

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
		}))
		defer ts.Close()

		err := UploadPresigned(context.Background(), ts.URL+"/photos/x?X-Amz-Signature=abc", photo)
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "application/octet-stream", gotCT)
		assert.Equal(t, photo, gotBody)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		err := UploadPresigned(context.Background(), ts.URL, photo)
		assert.ErrorContains(t, err, "403")
	})

	t.Run("unreachable bucket is an error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		err := UploadPresigned(context.Background(), ts.URL, photo)
		assert.Error(t, err)
	})
}
