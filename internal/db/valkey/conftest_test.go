package valkey

import "github.com/redis/rueidis"

// storeWith wraps a mock client; a nil client is fine for paths that never reach the server.
func storeWith(c rueidis.Client) *Store {
	return &Store{client: c}
}
