package webserver

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/m3rciful/planpicker/core/logger"
	"github.com/m3rciful/planpicker/core/metrics"
)

// APIPrefix is stripped before a request reaches the upstream.
const APIPrefix = "/api"

// newProxy forwards /api/* to upstream, so /api/backend/users becomes
// /backend/users on the upstream host.
func newProxy(upstream *url.URL, m *metrics.Metrics) http.Handler {
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.SetXForwarded()
			pr.Out.URL.Path = joinPath(upstream.Path, strings.TrimPrefix(pr.In.URL.Path, APIPrefix))
			pr.Out.URL.RawPath = ""
			pr.Out.Host = upstream.Host
		},
		ModifyResponse: func(resp *http.Response) error {
			m.IncProxy(codeClass(resp.StatusCode))
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			m.IncProxy(codeClass(http.StatusBadGateway))
			logger.LogEvent(r.Context(), logger.HTTP, slog.LevelWarn, "proxy.failed",
				slog.String("path", r.URL.Path),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				logger.Err(err),
			)
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, Error("upstream unavailable"))
		},
	}
	return rp
}

func joinPath(base, p string) string {
	if p == "" {
		p = "/"
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

func codeClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
