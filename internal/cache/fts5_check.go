//go:build !sqlite_fts5

package cache

// The cache schema creates an FTS5 virtual table for message search,
// and mattn/go-sqlite3 only compiles FTS5 support when the sqlite_fts5
// build tag is set. Without it every binary fails at startup while
// migrating the cache, so surface the problem at compile time instead:
//
//	go build -tags sqlite_fts5 ./...
//	go test -tags sqlite_fts5 ./...
var _ = theCacheRequiresTheSqliteFTS5BuildTag
