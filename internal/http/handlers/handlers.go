package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/unibridge-backend/internal/http/response"
	"github.com/yungbote/unibridge-backend/internal/platform/apierr"
	"github.com/yungbote/unibridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

// caller returns the authenticated user id, writing a 401 when the request has none.
func caller(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondErr(c, nil, apierr.Unauthorized("missing or invalid token"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// pathID parses the named path parameter as a UUID, writing a 400 when it is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondErr(c, nil, apierr.Validation("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into dst, writing a 400 on malformed input.
func bindJSON(c *gin.Context, log *logger.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.Debug("Invalid request body", "path", c.FullPath(), "error", err)
		response.RespondErr(c, log, apierr.Validation("invalid request body"))
		return false
	}
	return true
}
