package counter

import "fmt"

// DeriveScopeKey maps a (ward, year) pair to the counter bucket it draws
// numbers from.
//
// Years up to and including the cutover form the legacy epoch and share one
// bucket per ward, so the key is the ward name alone. Later years each get a
// dedicated "ward#year" bucket. The function is pure: it never consults the
// registry or the store, and two pairs mapping to the same string share a
// counter on purpose.
func DeriveScopeKey(ward string, year, cutoverYear int) string {
	if year <= cutoverYear {
		return ward
	}
	return fmt.Sprintf("%s#%d", ward, year)
}
