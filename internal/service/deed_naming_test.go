package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextDeedNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		previous string
		want     string
	}{
		{"empty registry", nil, "", "D001"},
		{"sequential", []string{"D001", "D002"}, "", "D003"},
		{"unordered input", []string{"D007", "D002", "D005"}, "", "D008"},
		{"padding widens", []string{"D999"}, "", "D1000"},
		{"longer wins over lexicographic", []string{"D1000", "D999"}, "", "D1001"},
		{"chain ids ignored for fresh", []string{"D001", "D001-01", "D001-02"}, "", "D002"},
		{"non-matching ids ignored", []string{"LAND-9", "X", "deed"}, "", "D001"},
		{"other letter prefix kept", []string{"A041"}, "", "A042"},
		{"first in chain", nil, "D005", "D005-01"},
		{"chain continues", []string{"D001-01", "D001-02"}, "D001", "D001-03"},
		{"chain widens past 99", []string{"D001-99"}, "D001", "D001-100"},
		{"chain reaches 10", []string{"D001-09", "D001-01"}, "D001", "D001-10"},
		{"other chains ignored", []string{"D002-05", "D001"}, "D001", "D001-01"},
		{"unparseable chain suffix", []string{"D001-xx"}, "D001", "D001-01"},
		{"nested chain", []string{"D001-01", "D001-01-01"}, "D001-01", "D001-01-02"},
		{"grandchildren ignored", []string{"D001-01", "D001-02", "D001-01-01"}, "D001", "D001-03"},
		{"chain longer suffix wins", []string{"D001-99", "D001-100"}, "D001", "D001-101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDeedNumber(tt.existing, tt.previous))
		})
	}
}

func TestNextDeedNumber_Deterministic(t *testing.T) {
	existing := []string{"D003", "D001", "D002"}
	first := NextDeedNumber(existing, "")
	assert.Equal(t, first, NextDeedNumber(existing, ""))
	assert.Equal(t, []string{"D003", "D001", "D002"}, existing, "input must not be reordered")
}
