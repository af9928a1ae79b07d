package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskr-api/internal/api/shared"
	"github.com/phrazzld/taskr-api/internal/domain"
	"github.com/phrazzld/taskr-api/internal/store"
)

// errMalformedBody marks a body that is not the expected JSON shape.
var errMalformedBody = fmt.Errorf("%w: malformed request body", domain.ErrValidation)

// getPathUUID extracts a UUID path parameter. A missing or malformed value
// is reported as notFound, since no resource can have such an id.
func getPathUUID(r *http.Request, paramName string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// decodePatch decodes a JSON object, rejects it wholesale if it names any
// key outside allowed, and then decodes it into v.
func decodePatch(r *http.Request, allowed []string, v any) error {
	var raw map[string]json.RawMessage
	if err := shared.DecodeJSON(r, &raw); err != nil || raw == nil {
		return errMalformedBody
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	if err := domain.CheckUpdateKeys(keys, allowed); err != nil {
		return err
	}

	// A null would leave the field untouched, so it is rejected like a
	// missing required value.
	verr := &domain.ValidationError{}
	for _, k := range keys {
		if bytes.Equal(bytes.TrimSpace(raw[k]), []byte("null")) {
			verr.Add(k, "is required")
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return errMalformedBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errMalformedBody
	}
	return nil
}

// sortFields maps accepted sortBy names to store fields.
var sortFields = map[string]store.TaskSortField{
	"createdAt":   store.SortByCreatedAt,
	"created_at":  store.SortByCreatedAt,
	"updatedAt":   store.SortByUpdatedAt,
	"updated_at":  store.SortByUpdatedAt,
	"description": store.SortByDescription,
	"completed":   store.SortByCompleted,
}

// parseTaskListOptions reads completed, sortBy, limit and skip. Values that
// cannot be used are ignored rather than rejected.
func parseTaskListOptions(q url.Values) store.TaskListOptions {
	var opts store.TaskListOptions

	if q.Get("completed") != "" {
		completed := q.Get("completed") == "true"
		opts.Completed = &completed
	}

	if sortBy := q.Get("sortBy"); sortBy != "" {
		name, direction, _ := strings.Cut(sortBy, ":")
		if field, ok := sortFields[name]; ok {
			opts.SortField = field
			opts.SortDesc = strings.EqualFold(direction, "desc")
		}
	}

	opts.Limit = nonNegativeInt(q.Get("limit"))
	opts.Offset = nonNegativeInt(q.Get("skip"))
	return opts
}

func nonNegativeInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
