package handler

import (
	"bufio"
	"io"
	"net/http"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// DataBinder binds a JSON or form request body into req. Binding or validation failures are
// reported with the given message so handlers can keep their user-facing wording.
func DataBinder(c *gin.Context, req any, message string) error {
	switch c.ContentType() {
	case binding.MIMEJSON, binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
	default:
		return errdef.NewUnsupportedMediaType("%s only accepts content of type application/json, application/x-www-form-urlencoded or multipart/form-data", c.FullPath())
	}

	if err := c.ShouldBind(req); err != nil {
		return errdef.NewBadRequest("%s", message)
	}

	return nil
}

// HasBody reports whether the request carries a body. Requests of unknown length, like chunked
// ones, are peeked at and the body is replaced so the peeked byte can still be read.
func HasBody(c *gin.Context) bool {
	body := c.Request.Body
	if body == nil || body == http.NoBody || c.Request.ContentLength == 0 {
		return false
	}
	if c.Request.ContentLength > 0 {
		return true
	}

	reader := bufio.NewReader(body)
	_, err := reader.Peek(1)
	c.Request.Body = struct {
		io.Reader
		io.Closer
	}{reader, body}
	return err == nil
}
