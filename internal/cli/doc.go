// Package cli implements uptimectl, the administrative command-line tool.
//
// It works directly on the server's data directory, without going through
// the HTTP API:
//
//	uptimectl -d <dir> list users|checks|tokens
//	uptimectl -d <dir> login <phone>
//	uptimectl -d <dir> hash
//
// Passwords are read from the terminal without echo.
package cli
