package openapi

// BasicAuth returns an HTTP basic authentication scheme.
//
// See: https://spec.openapis.org/oas/v3.1.0#security-scheme-object
func BasicAuth() *SecurityScheme {
	return &SecurityScheme{Type: "http", Scheme: "basic"}
}

// BearerAuth returns an HTTP bearer scheme. format is a hint such as "JWT"
// and may be empty.
func BearerAuth(format string) *SecurityScheme {
	return &SecurityScheme{Type: "http", Scheme: "bearer", BearerFormat: format}
}

// APIKeyAuth returns an API key scheme read from the given location
// ("query", "header" or "cookie") under name.
func APIKeyAuth(in, name string) *SecurityScheme {
	return &SecurityScheme{Type: "apiKey", In: in, Name: name}
}

// OpenIDConnectAuth returns an OpenID Connect discovery scheme.
func OpenIDConnectAuth(url string) *SecurityScheme {
	return &SecurityScheme{Type: "openIdConnect", OpenIDConnectURL: url}
}

// OAuth2Auth returns an OAuth2 scheme with the given flows.
//
// See: https://spec.openapis.org/oas/v3.1.0#oauth-flows-object
func OAuth2Auth(flows *OAuthFlows) *SecurityScheme {
	return &SecurityScheme{Type: "oauth2", Flows: flows}
}
