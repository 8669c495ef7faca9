// Package handler provides the HTTP handlers of the snapshot API.
//
// Every JSON response, success or failure, is wrapped in the Response
// envelope. Domain error codes are mapped onto HTTP statuses by
// errorCodeToHTTPStatus.
package handler
