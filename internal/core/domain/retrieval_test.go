package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePageIdentifier(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want PageIdentifier
		ok   bool
	}{
		{"float", float64(3), PageIdentifier{Number: 3}, true},
		{"fractional", 3.5, PageIdentifier{}, false},
		{"int", 7, PageIdentifier{Number: 7}, true},
		{"json number", json.Number("12"), PageIdentifier{Number: 12}, true},
		{"digit string", " 4 ", PageIdentifier{Number: 4, Title: "4"}, true},
		{"title", "Nutrition", PageIdentifier{Title: "Nutrition", ByTitle: true}, true},
		{"empty", "  ", PageIdentifier{}, false},
		{"bool", true, PageIdentifier{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePageIdentifier(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageIdentifier_String(t *testing.T) {
	assert.Equal(t, "5", PageByNumber(5).String())
	assert.Equal(t, "Intro", PageByTitle("Intro").String())
}
