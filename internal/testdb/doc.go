// Package testdb provides helpers for Postgres integration tests.
//
// Tests obtain a connection with GetTestDBWithT, which skips the test when no
// database URL is configured and applies the embedded migrations once per
// process. Each test then runs inside WithTx, whose transaction is always
// rolled back, so tests do not see each other's data and need no cleanup:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        users := postgres.NewPostgresUserStore(tx, nil)
//	        // ...
//	    })
//	}
package testdb
