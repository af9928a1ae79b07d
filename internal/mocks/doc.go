// Package mocks provides in-memory fakes of the store, auth, notifier and
// avatar interfaces for tests.
//
// Each fake has function fields that override a single method. When a field
// is nil the fake falls back to a small in-memory implementation, so handler
// and router tests can run whole flows without a database:
//
//	users := mocks.NewMockUserStore()
//	users.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
//	    return nil, errors.New("boom")
//	}
//
// The in-memory implementations return copies, so a caller mutating a result
// does not change stored state until it calls Update.
package mocks
