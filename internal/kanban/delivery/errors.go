package delivery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"kanladin-backend/pkg/apperrors"
)

// statusFor maps an application error to its HTTP status
func statusFor(err error) int {
	switch {
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case apperrors.IsConflict(err):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// clientError strips storage details before an error reaches a client
func clientError(err error) error {
	if statusFor(err) != http.StatusInternalServerError {
		return err
	}
	var storageErr *apperrors.StorageError
	if errors.As(err, &storageErr) {
		return apperrors.NewStorage(storageErr.Operation, nil)
	}
	return apperrors.NewStorage("unknown", nil)
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"component": "rest",
			"path":      c.FullPath(),
		}).Errorf("request failed: %v", err)
	}

	_ = c.Error(err)
	public := clientError(err)
	c.JSON(status, gin.H{
		"error": public.Error(),
		"code":  apperrors.Code(public),
	})
}
