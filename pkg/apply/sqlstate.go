// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"errors"

	"github.com/lib/pq"
)

// dependencyCodes is spec.md §4.6 step 7's set of SQLSTATEs that indicate a
// missing dependency rather than a genuine statement error: undefined_table,
// undefined_column, undefined_object, undefined_function, and
// invalid_schema_name. A statement failing with one of these is deferred to
// the next round instead of counted as a hard failure.
var dependencyCodes = map[pq.ErrorCode]bool{
	"42P01": true, // undefined_table
	"42703": true, // undefined_column
	"42704": true, // undefined_object
	"42883": true, // undefined_function
	"3F000": true, // invalid_schema_name
}

// IsDependencyError reports whether err is a *pq.Error whose SQLSTATE is one
// of the dependency-shaped codes spec.md §4.6 step 7 lists.
func IsDependencyError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return dependencyCodes[pqErr.Code]
	}
	return false
}

// SQLSTATE extracts the SQLSTATE code from err, or "" if err isn't a
// *pq.Error.
func SQLSTATE(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
