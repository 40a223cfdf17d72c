package order

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/menu-backend/internal/apperr"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"9876543210":       "919876543210",
		"09876543210":      "919876543210",
		"919876543210":     "919876543210",
		"+91 98765-43210":  "919876543210",
		"(987) 654-3210":   "919876543210",
		"+44 20 7946 0958": "442079460958",
		"12345":            "12345",
		"":                 "",
		"n/a":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in, "91"), in)
	}
}

func TestBuildOrderMessage(t *testing.T) {
	c := NewCart(menu)
	c.Adjust("b", 2)
	c.Adjust("a", 1)

	want := "Order from Blue Cafe:\n\n" +
		"1x Masala Dosa - ₹90 each\n" +
		"2x Filter Coffee - ₹25.5 each\n" +
		"\nSubtotal: ₹141.00" +
		"\nTotal: ₹148.05" +
		"\n\nThank you!"
	assert.Equal(t, want, BuildOrderMessage(c, "Blue Cafe", 0.05))

	noTax := BuildOrderMessage(c, "Blue Cafe", 0)
	assert.NotContains(t, noTax, "Total:")
	assert.Contains(t, noTax, "Subtotal: ₹141.00")
}

func TestBuildOrderMessageEmptyCart(t *testing.T) {
	assert.Equal(t, "I'm interested in ordering from your menu", BuildOrderMessage(NewCart(menu), "Blue Cafe", 0.05))
}

func TestEncodeOrderMessageRoundTrips(t *testing.T) {
	c := NewCart(menu)
	c.Adjust("a", 3)
	c.Adjust("c", 1)
	msg := BuildOrderMessage(c, "Ravi's Kitchen (Main St) & Co + 1", 0.05)

	encoded := EncodeOrderMessage(msg)
	assert.NotContains(t, encoded, " ")
	assert.NotContains(t, encoded, "\n")
	assert.NotContains(t, encoded, "+")
	assert.Contains(t, encoded, "Ravi's%20Kitchen%20(Main%20St)%20%26%20Co%20%2B%201")
	assert.Contains(t, encoded, "%E2%82%B9")

	decoded, err := url.PathUnescape(encoded)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
	decoded, err = url.QueryUnescape(encoded)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}

func TestBuildDeepLink(t *testing.T) {
	link, err := BuildDeepLink("098765 43210", EncodeOrderMessage("hi there"), "91")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/919876543210?text=hi%20there", link)

	_, err = BuildDeepLink("", "x", "91")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
