package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "강남 맛집", StripHTML("<b>강남</b> 맛집"))
	assert.Equal(t, "A & B", StripHTML(" A &amp; B "))
	assert.Equal(t, "plain", StripHTML("plain"))
	assert.Equal(t, "", StripHTML("<br/>"))
}
