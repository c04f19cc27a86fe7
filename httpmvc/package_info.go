// Package httpmvc lets an http.Handler be the subject of a chain. The request is arranged
// in a "request" child context, the handler is served through an httptest recorder, and the
// response is mapped to a result shape. Response headers and cookies are left behind as the
// "headers" and "cookies" stores.
package httpmvc
