package common

// AuthorizationHeaderName is the HTTP header carrying the bearer credential
// on privileged requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix prefixes the credential value in the Authorization header.
const BearerPrefix = "Bearer "
