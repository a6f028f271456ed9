package types

import "net/http"

const ContextUserKey = "user"

const DateLayout = "2006-01-02"

// SafeMethods never modify state and are served with read schemas.
var SafeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}
