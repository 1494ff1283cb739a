package cspx

import "net/http"

type Route struct {
	Prefix      string `json:"prefix"`
	Target      string `json:"target"`
	Strip       bool   `json:"strip,omitempty"`
	RewriteHost bool   `json:"rewrite_host,omitempty"`
}

// Endpoint mounts a handler served by this process itself, ahead of any
// proxied route or hosted asset directory sharing its prefix.
type Endpoint struct {
	Path    string
	Handler http.Handler
}
