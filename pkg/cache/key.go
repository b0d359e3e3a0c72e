package cache

import "strconv"

// Key prefixes for the users API.
const (
	pagePrefix = "users_page_"
	userPrefix = "user_"
)

// PageKey returns the cache key for a page of the user listing, e.g. "users_page_2".
func PageKey(page int) string {
	return pagePrefix + strconv.Itoa(page)
}

// UserKey returns the cache key for a single user, e.g. "user_42".
func UserKey(id int) string {
	return userPrefix + strconv.Itoa(id)
}
