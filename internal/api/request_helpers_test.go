package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskListOptions(t *testing.T) {
	t.Parallel()

	t.Run("all parameters", func(t *testing.T) {
		opts := parseTaskListOptions(url.Values{
			"completed": {"true"},
			"sortBy":    {"createdAt:desc"},
			"limit":     {"10"},
			"skip":      {"20"},
		})
		require.NotNil(t, opts.Completed)
		assert.True(t, *opts.Completed)
		assert.Equal(t, store.SortByCreatedAt, opts.SortField)
		assert.True(t, opts.SortDesc)
		assert.Equal(t, 10, opts.Limit)
		assert.Equal(t, 20, opts.Offset)
	})

	t.Run("completed is true only for true", func(t *testing.T) {
		opts := parseTaskListOptions(url.Values{"completed": {"yes"}})
		require.NotNil(t, opts.Completed)
		assert.False(t, *opts.Completed)
	})

	t.Run("empty completed applies no filter", func(t *testing.T) {
		opts := parseTaskListOptions(url.Values{"completed": {""}, "sortBy": {"createdAt:asc"}})
		assert.Nil(t, opts.Completed)
		assert.Equal(t, store.SortByCreatedAt, opts.SortField)
	})

	t.Run("defaults", func(t *testing.T) {
		opts := parseTaskListOptions(url.Values{})
		assert.Nil(t, opts.Completed)
		assert.Empty(t, opts.SortField)
		assert.False(t, opts.SortDesc)
		assert.Zero(t, opts.Limit)
		assert.Zero(t, opts.Offset)
	})

	t.Run("unusable values are ignored", func(t *testing.T) {
		opts := parseTaskListOptions(url.Values{
			"sortBy": {"owner:desc"},
			"limit":  {"-3"},
			"skip":   {"abc"},
		})
		assert.Empty(t, opts.SortField)
		assert.False(t, opts.SortDesc)
		assert.Zero(t, opts.Limit)
		assert.Zero(t, opts.Offset)
	})

	t.Run("ascending without direction", func(t *testing.T) {
		opts := parseTaskListOptions(url.Values{"sortBy": {"description"}})
		assert.Equal(t, store.SortByDescription, opts.SortField)
		assert.False(t, opts.SortDesc)
	})
}

func TestDecodePatch(t *testing.T) {
	t.Parallel()

	newReq := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPatch, "/tasks/1", strings.NewReader(body))
	}

	t.Run("allowed keys", func(t *testing.T) {
		var patch domain.TaskPatch
		require.NoError(t, decodePatch(newReq(`{"completed":true}`), domain.TaskUpdateFields, &patch))
		require.NotNil(t, patch.Completed)
		assert.True(t, *patch.Completed)
		assert.Nil(t, patch.Description)
	})

	t.Run("any disallowed key rejects everything", func(t *testing.T) {
		var patch domain.TaskPatch
		err := decodePatch(newReq(`{"completed":true,"foo":1}`), domain.TaskUpdateFields, &patch)
		assert.ErrorIs(t, err, domain.ErrInvalidUpdate)
		assert.Nil(t, patch.Completed)
	})

	t.Run("null task field", func(t *testing.T) {
		var patch domain.TaskPatch
		err := decodePatch(newReq(`{"description":null}`), domain.TaskUpdateFields, &patch)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "description")
		assert.Nil(t, patch.Description)
	})

	t.Run("null user fields", func(t *testing.T) {
		var patch domain.UserPatch
		err := decodePatch(newReq(`{"name":"Ada","password":null,"email":null}`), domain.UserUpdateFields, &patch)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "password")
		assert.Contains(t, verr.Fields, "email")
		assert.NotContains(t, verr.Fields, "name")
		assert.Nil(t, patch.Name)
	})

	t.Run("not an object", func(t *testing.T) {
		var patch domain.TaskPatch
		err := decodePatch(newReq(`[1,2]`), domain.TaskUpdateFields, &patch)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("wrong value type", func(t *testing.T) {
		var patch domain.TaskPatch
		err := decodePatch(newReq(`{"completed":"yes"}`), domain.TaskUpdateFields, &patch)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
