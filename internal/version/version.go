// Package version contains information on the current version of the library.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of the thingtalk
// library, as reported by the ttnn and ttnnd -v flags and the server's /info
// endpoint.
const Current = "1.11.0"
