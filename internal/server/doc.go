// Package server exposes playback sessions to browsers over HTTP and
// websockets. Each websocket connection owns one engine session; browser
// rendering traffic and session commands share the connection.
package server
