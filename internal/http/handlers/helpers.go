package handlers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studentaid-backend/internal/http/response"
	"github.com/yungbote/studentaid-backend/internal/platform/apierr"
	"github.com/yungbote/studentaid-backend/internal/platform/ctxutil"
)

const dateLayout = "2006-01-02"

func requestData(c *gin.Context) *ctxutil.RequestData {
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		return rd
	}
	return &ctxutil.RequestData{}
}

// pathUUID parses the named path param, answering 400 itself on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondServiceError(c, "invalid_"+name, apierr.BadRequest("invalid_"+name, fmt.Errorf("%s must be a uuid", name)))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondServiceError(c, "invalid_request", apierr.BadRequest("invalid_request", err))
		return false
	}
	return true
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apierr.BadRequest("invalid_date", fmt.Errorf("%s must be YYYY-MM-DD", field))
	}
	return d, nil
}

func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := parseDate(field, *raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// rawOrEmpty turns an omitted payload into an empty object.
func rawOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return raw
}
