package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseISBNParam(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"thirteen digits", "9781617294136", true},
		{"too short", "978161729413", false},
		{"too long", "97816172941360", false},
		{"letters", "97816172941X6", false},
		{"hyphenated", "978-1617294136", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "isbn", Value: tt.value}}

			isbn, ok := parseISBNParam(c, "isbn")

			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.value, isbn)
				assert.Equal(t, http.StatusOK, w.Code)
			} else {
				assert.Empty(t, isbn)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), "invalid isbn")
			}
		})
	}
}

func TestParseQueryInt_Default(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	n, ok := parseQueryInt(c, "limit", 20)

	assert.True(t, ok)
	assert.Equal(t, 20, n)
}

func TestParseQueryInt_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?offset=40", nil)

	n, ok := parseQueryInt(c, "offset", 0)

	assert.True(t, ok)
	assert.Equal(t, 40, n)
}

func TestParseQueryInt_Invalid(t *testing.T) {
	for _, raw := range []string{"abc", "-1", "1.5"} {
		t.Run(raw, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/?page="+raw, nil)

			_, ok := parseQueryInt(c, "page", 1)

			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "invalid page")
		})
	}
}

func TestRespondAccepted(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondAccepted(c, "queued", gin.H{"task_id": "abc"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"queued"`)
	assert.Contains(t, w.Body.String(), `"task_id":"abc"`)
}

func TestRespondInternalError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondInternalError(c, assert.AnError, "test")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.Nil(t, ValidateStruct(AddFavouriteRequest{ISBN13: "9781617294136", Title: "Securing DevOps"}))
	})

	t.Run("reports json field names", func(t *testing.T) {
		errs := ValidateStruct(AddFavouriteRequest{ISBN13: "12345"})

		assert.Equal(t, []ValidationError{{Field: "isbn13", Message: "must be 13 digits"}}, errs)
	})

	t.Run("required pointer", func(t *testing.T) {
		errs := ValidateStruct(UpdatePreferenceRequest{Key: "dark_theme"})

		assert.Equal(t, []ValidationError{{Field: "value", Message: "is required"}}, errs)
	})
}
