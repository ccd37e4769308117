package controllers

import (
	"net/http"

	"github.com/Chakshu098/Everhack/internal/access"
	"github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/session"
)

// AccessResponse is the data of GET /access.
type AccessResponse struct {
	Destination string `json:"destination"`
	// Protected is false for destinations without an access rule.
	Protected bool            `json:"protected"`
	Decision  access.Decision `json:"decision"`
}

type AccessController struct {
	Policy access.Policy
}

func NewAccessController(policy access.Policy) *AccessController {
	return &AccessController{Policy: policy}
}

// Check godoc
// @Summary Check access to a page
// @Description Reports whether the caller may enter destination, must be redirected, or must wait for the session to settle.
// @Tags access
// @Produce json
// @Security BearerAuth
// @Param destination query string true "Page path, e.g. /admin"
// @Success 200 {object} helpers.APIResponse "data is an AccessResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /access [get]
func (c *AccessController) Check(w http.ResponseWriter, r *http.Request) {
	dest := r.URL.Query().Get("destination")
	if dest == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "destination is required")
		return
	}
	st := session.FromContext(r.Context()).State()
	helpers.WriteJSONSuccess(w, http.StatusOK, AccessResponse{
		Destination: dest,
		Protected:   c.Policy.Protected(dest),
		Decision:    c.Policy.Decide(dest, st),
	})
}
