// Package apiconnect wires the api messages to Connect handlers and clients.
//
// Each service is mounted under "/splitmoney.v1.<Service>/" and every
// procedure is a unary call using the api.Codec JSON codec.
package apiconnect

import (
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitmoney/pkg/api"
)

const packagePrefix = "splitmoney.v1."

// handlerOptions puts the JSON codec ahead of the caller's options.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

// clientOptions puts the JSON codec ahead of the caller's options.
func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}

// router dispatches on the full procedure path.
type router map[string]http.Handler

func (rt router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := rt[r.URL.Path]; ok {
		h.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func trimBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
