package redis

import "fmt"

// Key prefix for all application data
const keyPrefix = "clash"

// userKey returns the Redis key for a User
func userKey(id string) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// onlineSetKey returns the Redis key for the SET of online user IDs
func onlineSetKey() string {
	return fmt.Sprintf("%s:online", keyPrefix)
}

// gameKey returns the Redis key for a user's GameState
func gameKey(username string) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, username)
}
