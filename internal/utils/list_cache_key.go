package utils

import (
	"strconv"
	"strings"

	"github.com/codefreela/userhub/internal/domain/user"
)

// BuildUsersListCacheKey derives a stable cache key from the normalized
// list query so equal queries share one entry.
func BuildUsersListCacheKey(q user.Query) string {
	q = q.Normalized()

	return "users:list:v1" +
		":skip=" + strconv.Itoa(q.Skip) +
		":take=" + strconv.Itoa(q.Take) +
		":sortBy=" + q.SortBy +
		":sortDesc=" + strconv.FormatBool(q.SortDesc) +
		":search=" + strings.ToLower(strings.TrimSpace(q.Search))
}
