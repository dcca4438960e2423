package handler

import (
	"math"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// PageBody is the list envelope: count plus absolute next/previous links.
type PageBody[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type pageRequest struct {
	Page int
	Size int
}

func (p pageRequest) Offset() int { return (p.Page - 1) * p.Size }

// parsePage reads ?page=&page_size=. A bad page number is reported so the
// caller can answer 404; a bad page_size silently falls back to the default.
func parsePage(c *gin.Context, defaultSize int) (pageRequest, bool) {
	req := pageRequest{Page: 1, Size: defaultSize}

	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			req.Size = min(n, maxPageSize)
		}
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		// pages whose offset would overflow are past any real end
		if err != nil || n < 1 || n > math.MaxInt32/req.Size {
			return req, false
		}
		req.Page = n
	}
	return req, true
}

// inRange is false for any page past the end, except an empty first page.
func (p pageRequest) inRange(count int64) bool {
	return p.Page == 1 || int64(p.Offset()) < count
}

func newPageBody[T any](c *gin.Context, req pageRequest, count int64, results []T) PageBody[T] {
	body := PageBody[T]{Count: count, Results: results}
	if int64(req.Page*req.Size) < count {
		next := pageURL(c, req.Page+1)
		body.Next = &next
	}
	if req.Page > 1 {
		prev := pageURL(c, req.Page-1)
		body.Previous = &prev
	}
	return body
}

func pageURL(c *gin.Context, page int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}

	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
