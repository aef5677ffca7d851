package scriptbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"collapse runs", "vpn   drops \t every  hour", "vpn drops every hour"},
		{"trim ends", "  password reset  ", "password reset"},
		{"control chars", "racf\x00pin\x1freset", "racf pin reset"},
		{"fullwidth to ascii", "ＶＰＮ　ｅｒｒｏｒ", "VPN error"},
		{"compatibility ligature", "oﬃce printer", "office printer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeText(tc.in))
		})
	}
}
