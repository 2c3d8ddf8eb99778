package common

// AccessTokenHeaderName is the HTTP header used to carry the access token
// on authenticated sync-API requests.
const AccessTokenHeaderName = "X-Tripwit-Access-Token"
