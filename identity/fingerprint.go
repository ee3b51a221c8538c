package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	streetReplacements = map[string]string{
		"street":    "st",
		"avenue":    "ave",
		"drive":     "dr",
		"road":      "rd",
		"boulevard": "blvd",
		"lane":      "ln",
		"court":     "ct",
		"place":     "pl",
		"circle":    "cir",
		"trail":     "trl",
		"terrace":   "ter",
		"highway":   "hwy",
		"parkway":   "pkwy",
		"north":     "n",
		"south":     "s",
		"east":      "e",
		"west":      "w",
		"northeast": "ne",
		"northwest": "nw",
		"southeast": "se",
		"southwest": "sw",
		"apartment": "apt",
		"suite":     "ste",
	}
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Fingerprint hashes the normalized parts into a 32-char hex id. Used for
// CMS documents that arrive without an _id.
func Fingerprint(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = NormalizeText(p)
	}
	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:16])
}

// NormalizeText lower-cases, strips punctuation and collapses whitespace.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRegex.ReplaceAllString(s, " ")
	s = multiSpaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeAddress is NormalizeText plus USPS-style abbreviations, applied
// per word so "Northeast" never half-matches "North".
func NormalizeAddress(addr string) string {
	words := strings.Fields(NormalizeText(addr))
	for i, w := range words {
		if abbrev, ok := streetReplacements[w]; ok {
			words[i] = abbrev
		}
	}
	return strings.Join(words, " ")
}

// ListingRef is the natural key of a relational listing as one string,
// for logs and cache keys.
func ListingRef(mlsID, listingKey string) string {
	return strings.TrimSpace(mlsID) + "/" + strings.TrimSpace(listingKey)
}
