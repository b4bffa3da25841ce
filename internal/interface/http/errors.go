package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
	"github.com/oksasatya/campus-resource-tracker/pkg/response"
	"github.com/oksasatya/campus-resource-tracker/pkg/validation"
)

const internalMessage = "internal server error"

var statusByKind = map[apperror.Kind]int{
	apperror.KindValidation:   http.StatusBadRequest,
	apperror.KindDuplicateKey: http.StatusBadRequest,
	apperror.KindAlreadyRated: http.StatusBadRequest,
	apperror.KindUnauthorized: http.StatusUnauthorized,
	apperror.KindForbidden:    http.StatusForbidden,
	apperror.KindNotFound:     http.StatusNotFound,
	apperror.KindInternal:     http.StatusInternalServerError,
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	if s, ok := statusByKind[apperror.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// respondError writes the envelope for err. Internal failures are logged with
// the request id and answered with an opaque message plus the diagnostic code
// when there is one.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var ae *apperror.AppError
	if !errors.As(err, &ae) {
		ae = apperror.Internal("unclassified", err)
	}

	status := StatusOf(ae)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
				"code":       ae.Code,
			}).Error("request failed")
		}
		var detail any
		if ae.Code != "" {
			detail = gin.H{"code": ae.Code}
		}
		response.Error[any](c, status, internalMessage, detail)
		return
	}

	var detail any
	if len(ae.Fields) > 0 {
		detail = ae.Fields
	}
	response.Error[any](c, status, ae.Message, detail)
}

// respondBindError reports a malformed request body.
func respondBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
