// Package response formats REST replies consistently across handlers.
package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/pulsechat/pulse/pkg/errcode"
)

// Envelope is the standard REST response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a 200 with the payload under "data", plus success:true so
// clients can branch on one field regardless of status code.
func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Error maps an *errcode.Error's Kind to the matching HTTP status and emits
// {success:false, error}.
func Error(ctx context.Context, c *app.RequestContext, err error) {
	e := errcode.FromErr(err)
	c.JSON(e.Kind.HTTPStatus(), Envelope{Success: false, Error: e.Msg})
}
