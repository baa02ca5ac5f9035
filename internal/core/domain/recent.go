package domain

import "strings"

const (
	RecentSearchesNamespace = "recentSearches"
	DefaultRecentCapacity   = 5
	AnonymousClient         = "anonymous"
)

// RecentSearchesKey returns the storage key of the client's recent searches.
func RecentSearchesKey(clientID string) string {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID = AnonymousClient
	}
	return RecentSearchesNamespace + ":" + clientID
}

// PushRecentSearch returns a new list with text at the front.
//
// An existing equal entry is moved rather than duplicated and the result
// holds at most capacity entries. Blank text leaves the list unchanged.
func PushRecentSearch(list []string, text string, capacity int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return list
	}
	if capacity <= 0 {
		capacity = DefaultRecentCapacity
	}

	out := make([]string, 0, min(len(list)+1, capacity))
	out = append(out, text)
	for _, v := range list {
		if len(out) == capacity {
			break
		}
		if v == text {
			continue
		}
		out = append(out, v)
	}
	return out
}
