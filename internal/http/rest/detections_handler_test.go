package rest

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/detections", nil)

	limit, offset := pageParams(r, 100, 500)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 0, offset)
}

func TestPageParamsFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/detections?limit=25&offset=50", nil)

	limit, offset := pageParams(r, 100, 500)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 50, offset)
}

func TestPageParamsCapsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/detections?limit=9999", nil)

	limit, _ := pageParams(r, 100, 500)
	assert.Equal(t, 500, limit)
}

func TestPageParamsIgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/detections?limit=abc&offset=-3", nil)

	limit, offset := pageParams(r, 100, 500)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 0, offset)
}
