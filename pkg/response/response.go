package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"nub.ac.bd/transport/pkg/apperror"
)

const UserIDKey = "user_id"

// DataList is the envelope for paginated collections.
type DataList[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// NewDataList never returns a nil Items slice so clients always see an array.
func NewDataList[T any](items []T, total int64, page, limit int) DataList[T] {
	if items == nil {
		items = []T{}
	}
	return DataList[T]{Items: items, Total: total, Page: page, Limit: limit}
}

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uint, error) {
	raw, exists := c.Get(UserIDKey)
	if !exists {
		return 0, apperror.Unauthorized("user not authenticated")
	}

	switch v := raw.(type) {
	case uint:
		return v, nil
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return 0, apperror.Unauthorized("invalid token subject")
		}
		return uint(id), nil
	}
	return 0, apperror.Unauthorized("invalid token subject")
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.BadRequest("invalid %s", name)
	}
	return uint(id), nil
}

// Data writes a single-object payload.
func Data(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"data": data})
}

// List writes a paginated payload.
func List[T any](c *gin.Context, list DataList[T]) {
	c.JSON(http.StatusOK, list)
}

// All writes an unpaginated collection as a single page.
func All[T any](c *gin.Context, items []T) {
	List(c, NewDataList(items, int64(len(items)), 1, len(items)))
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
