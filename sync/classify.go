package sync

import (
	"regexp"
	"strings"
)

// Classification buckets a transaction buyer. Only corporate buyers enter
// the pipeline; trusts and individuals are dropped without logging noise.
type Classification string

const (
	ClassTrust      Classification = "trust"
	ClassIndividual Classification = "individual"
	ClassCorporate  Classification = "corporate"
)

// Provider ownership codes that mark trust-held title.
var trustCodes = map[string]bool{
	"TR": true,
	"FL": true,
}

var (
	// Whole-word match covers the full phrase family: "living trust",
	// "family trust", "revocable trust", "irrevocable trust", "spousal
	// trust" and bare "trust" all end in the same word. "Trustee" does not
	// match.
	trustNameRegex = regexp.MustCompile(`(?i)\btrust\b`)

	corporateSuffixRegex = regexp.MustCompile(`(?i)\b(?:llc|inc|corp|ltd|lp|properties|investments?|capital|ventures?|holdings?|realty)\b`)
)

// Classify buckets a buyer by ownership code first, then by name. Rules
// apply in order and the first match wins.
func Classify(buyerName, ownershipCode string) Classification {
	if trustCodes[strings.ToUpper(strings.TrimSpace(ownershipCode))] {
		return ClassTrust
	}
	if trustNameRegex.MatchString(buyerName) {
		return ClassTrust
	}
	if strings.Contains(strings.ToLower(buyerName), "opendoor") {
		return ClassCorporate
	}
	if corporateSuffixRegex.MatchString(buyerName) {
		return ClassCorporate
	}
	return ClassIndividual
}
