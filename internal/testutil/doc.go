// Package testutil contains builders and scripted fakes used across tests to
// construct events and experiences and to drive playback without a browser
// or a data service. It is not intended for production usage.
package testutil
