package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go-grocery/apps/store/service"
	"go-grocery/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const msgNotFound = "Not found."

// writeError maps service errors onto status codes. Unknown errors are
// logged and hidden behind a 500.
func writeError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ValidationError(c, "Invalid input.", ve.Fields)
	case errors.Is(err, service.ErrNotFound):
		response.Error(c, http.StatusNotFound, msgNotFound)
	default:
		_ = c.Error(err)
		log.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		response.Error(c, http.StatusInternalServerError, "Internal server error.")
	}
}

// idParam parses the :id segment; anything but a positive integer cannot
// match a row, so it is a 404.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return uint(id), true
}
