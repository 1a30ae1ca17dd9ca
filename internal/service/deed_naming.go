package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Deed number schemes:
//
//	fresh registration: {letter}{number:03d}    e.g. D001, D002, D1000
//	transfer chain:     {previous}-{number:02d} e.g. D001-01, D001-02
const (
	defaultDeedPrefix = "D"
	firstDeedNumber   = defaultDeedPrefix + "001"
	firstChainSuffix  = "-01"
)

var freshDeedPattern = regexp.MustCompile(`^([A-Za-z])([0-9]+)$`)

// NextDeedNumber computes the next deed number given the identifiers already
// in use. An empty previous allocates a fresh registration number; otherwise
// the next number in previous's transfer chain is returned.
//
// Among candidates the longest identifier wins and ties go to the
// lexicographically greatest, so D1000 ranks above D999.
//
// The result is not reserved; callers that insert must hold the allocation
// lock for the same transaction.
func NextDeedNumber(existing []string, previous string) string {
	if previous == "" {
		return nextFreshDeedNumber(existing)
	}
	return nextChainDeedNumber(existing, previous)
}

func nextFreshDeedNumber(existing []string) string {
	var best string
	for _, id := range existing {
		if freshDeedPattern.MatchString(id) && ranksAbove(id, best) {
			best = id
		}
	}
	if best == "" {
		return firstDeedNumber
	}

	m := freshDeedPattern.FindStringSubmatch(best)
	n, err := strconv.ParseUint(m[2], 10, 63)
	if err != nil {
		return firstDeedNumber
	}
	return fmt.Sprintf("%s%03d", m[1], n+1)
}

func nextChainDeedNumber(existing []string, previous string) string {
	prefix := previous + "-"
	var best string
	for _, id := range existing {
		suffix, ok := strings.CutPrefix(id, prefix)
		if ok && isDigits(suffix) && ranksAbove(suffix, best) {
			best = suffix
		}
	}
	if best == "" {
		return previous + firstChainSuffix
	}

	n, err := strconv.ParseUint(best, 10, 63)
	if err != nil {
		return previous + firstChainSuffix
	}
	return fmt.Sprintf("%s%02d", prefix, n+1)
}

// isDigits excludes grandchildren such as D001-01-01 from D001's chain.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ranksAbove orders by length first, then lexicographically.
func ranksAbove(candidate, current string) bool {
	if len(candidate) != len(current) {
		return len(candidate) > len(current)
	}
	return candidate > current
}
