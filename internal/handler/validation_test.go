package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Payload struct {
	Field string `binding:"required,oneOf=one two"`
}

type EventPayload struct {
	StartDate string  `binding:"required,isodate"`
	StartTime *string `binding:"omitempty,clock"`
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	request, err := http.NewRequest("GET", "/", nil)
	assert.NoError(t, err)
	ctx.Request = request

	t.Run("OneOf", func(t *testing.T) {
		err = ctx.ShouldBind(&Payload{Field: "one"})
		assert.NoError(t, err)

		err = ctx.ShouldBind(&Payload{Field: "two"})
		assert.NoError(t, err)

		err = ctx.ShouldBind(&Payload{Field: "oh no"})
		assert.Error(t, err)
		assert.Equal(t, "Key: 'Payload.Field' Error:Field validation for 'Field' failed on the 'oneOf' tag", err.Error())
	})

	t.Run("DateAndClock", func(t *testing.T) {
		morning := "09:30"
		withSeconds := "13:05:00"
		late := "24:00"

		assert.NoError(t, ctx.ShouldBind(&EventPayload{StartDate: "2025-06-14"}))
		assert.NoError(t, ctx.ShouldBind(&EventPayload{StartDate: "2025-06-14", StartTime: &morning}))
		assert.NoError(t, ctx.ShouldBind(&EventPayload{StartDate: "2025-06-14", StartTime: &withSeconds}))
		assert.Error(t, ctx.ShouldBind(&EventPayload{StartDate: "2025-02-30"}))
		assert.Error(t, ctx.ShouldBind(&EventPayload{StartDate: "06/14/2025"}))
		assert.Error(t, ctx.ShouldBind(&EventPayload{StartDate: "2025-06-14", StartTime: &late}))
	})
}
