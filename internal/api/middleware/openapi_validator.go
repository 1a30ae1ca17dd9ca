package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"

	"landledger.io/registry/internal/api/openapi"
	apperrors "landledger.io/registry/internal/pkg/errors"
)

// NewOpenAPIValidator validates requests against the embedded OpenAPI
// document before they reach handlers. Document paths are relative to
// basePath; anything the document does not describe passes through.
func NewOpenAPIValidator(basePath string) (gin.HandlerFunc, error) {
	doc, err := openapi.Load(context.Background())
	if err != nil {
		return nil, err
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create openapi router: %w", err)
	}

	basePath = normalizeBasePath(basePath)

	return func(c *gin.Context) {
		route, pathParams, err := findRoute(router, c.Request, basePath)
		if err != nil {
			if isUnroutedError(err) {
				c.Next()
				return
			}
			abortWithOpenAPIError(c, err.Error())
			return
		}

		if err := openapi3filter.ValidateRequest(c.Request.Context(), &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
		}); err != nil {
			abortWithOpenAPIError(c, requestErrorMessage(err))
			return
		}
		c.Next()
	}, nil
}

func normalizeBasePath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return ""
	}
	return "/" + strings.Trim(basePath, "/")
}

func normalizeValidationPath(basePath, path string) string {
	if basePath == "" {
		if path == "" {
			return "/"
		}
		return path
	}
	if path == basePath {
		return "/"
	}
	if strings.HasPrefix(path, basePath+"/") {
		return "/" + strings.TrimPrefix(path, basePath+"/")
	}
	return path
}

// findRoute resolves req against the document with basePath stripped. The
// request URL is restored before returning.
func findRoute(router routers.Router, req *http.Request, basePath string) (*routers.Route, map[string]string, error) {
	origPath, origRawPath := req.URL.Path, req.URL.RawPath
	defer func() {
		req.URL.Path, req.URL.RawPath = origPath, origRawPath
	}()

	req.URL.Path = normalizeValidationPath(basePath, origPath)
	if origRawPath != "" {
		req.URL.RawPath = normalizeValidationPath(basePath, origRawPath)
	}
	return router.FindRoute(req)
}

// isUnroutedError reports a path or method the document does not describe.
func isUnroutedError(err error) bool {
	if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
		return true
	}
	var routeErr *routers.RouteError
	if errors.As(err, &routeErr) {
		return routeErr.Reason == routers.ErrPathNotFound.Error() ||
			routeErr.Reason == routers.ErrMethodNotAllowed.Error()
	}
	return false
}

func requestErrorMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return err.Error()
	}
	switch {
	case reqErr.Parameter != nil:
		return fmt.Sprintf("parameter %q: %s", reqErr.Parameter.Name, reqErr.Error())
	case reqErr.RequestBody != nil:
		return "request body: " + reqErr.Error()
	default:
		return reqErr.Error()
	}
}

func abortWithOpenAPIError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:    apperrors.CodeInvalidRequest,
		Message: message,
	})
}
