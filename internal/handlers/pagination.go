package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/timetrack/internal/config"
	"github.com/monocle-dev/timetrack/internal/types"
	"gorm.io/gorm"
)

var (
	pageSize       = 50
	maxPageSize    = 200
	allowedOrigins []string
)

// Configure applies the settings handlers read at request time.
func Configure(cfg *config.Config) {
	if cfg.PageSize > 0 {
		pageSize = cfg.PageSize
	}
	if cfg.MaxPageSize > 0 {
		maxPageSize = cfg.MaxPageSize
	}
	allowedOrigins = cfg.AllowedOrigins
}

// paginate runs query for the requested page ordered by id and renders the
// rows. It answers the request itself and returns false on a bad page.
func paginate[M any, R any](ctx *gin.Context, query *gorm.DB, render func(*M) R, preloads ...string) (types.Page[R], bool) {
	page := 1
	if raw := ctx.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Invalid page."})
			return types.Page[R]{}, false
		}
		page = n
	}

	size := pageSize
	if raw := ctx.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			size = min(n, maxPageSize)
		}
	}

	base := query.Session(&gorm.Session{})

	var count int64
	if err := base.Count(&count).Error; err != nil {
		internalError(ctx, "failed to count rows", err)
		return types.Page[R]{}, false
	}

	// Checked in whole pages; (page-1)*size can overflow.
	if page > 1 && (count == 0 || int64(page-1) > (count-1)/int64(size)) {
		ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Invalid page."})
		return types.Page[R]{}, false
	}
	offset := (page - 1) * size

	find := base.Order("id").Limit(size).Offset(offset)
	for _, p := range preloads {
		find = find.Preload(p)
	}

	var rows []M
	if err := find.Find(&rows).Error; err != nil {
		internalError(ctx, "failed to list rows", err)
		return types.Page[R]{}, false
	}

	result := types.Page[R]{Count: count, Results: make([]R, 0, len(rows))}
	for i := range rows {
		result.Results = append(result.Results, render(&rows[i]))
	}

	if int64(offset+size) < count {
		next := pageURL(ctx, page+1)
		result.Next = &next
	}
	if page > 1 {
		prev := pageURL(ctx, page-1)
		result.Previous = &prev
	}

	return result, true
}

func pageURL(ctx *gin.Context, page int) string {
	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := ctx.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     ctx.Request.Host,
		Path:     ctx.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
