// Package dataservice implements core.DataService over HTTP.
//
// Endpoints, relative to the base URL:
//
//	GET    /experiences                 catalog
//	GET    /experiences/{id}/manifest   cast and navigation
//	POST   /experiences/{id}/events     next event batch, body is the member input
//	DELETE /experiences/{id}            end of experience
//
// Every failure (transport, status, decoding, validation) is normalized into
// a response whose Success flag is false; the message carries the cause.
package dataservice
