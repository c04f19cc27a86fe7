package httpmvc

import (
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/results"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ResultOf maps a recorded response to the result shape it stands for:
//
//   - a 3xx status with a Location header is a Redirect
//   - a JSON content type is JSON
//   - an empty 200 response is Empty, any other empty response is a Status
//   - a 2xx response with a body is Content
//   - anything else is a Status carrying the body text
func ResultOf(rec *httptest.ResponseRecorder) results.Result {
	code := rec.Code
	body := rec.Body.String()
	contentType := rec.Header().Get("Content-Type")

	if loc := rec.Header().Get("Location"); loc != "" && code >= 300 && code < 400 {
		return results.Redirect{
			URL:       loc,
			Permanent: code == http.StatusMovedPermanently || code == http.StatusPermanentRedirect,
		}
	}
	if isJSON(contentType) && body != "" {
		j := results.JSON{Value: results.ParseJSON(rec.Body.Bytes())}
		if code != http.StatusOK {
			j.StatusCode = ldvalue.NewOptionalInt(code)
		}
		return j
	}
	if body == "" {
		if code == http.StatusOK {
			return results.Empty{}
		}
		return results.Status{Code: code}
	}
	if code >= 200 && code < 300 {
		c := results.Content{Body: body, ContentType: contentType}
		if code != http.StatusOK {
			c.StatusCode = code
		}
		return c
	}
	return results.Status{Code: code, Value: body}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
