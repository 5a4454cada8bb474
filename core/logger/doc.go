// Package logger records shell session events as newline delimited JSON so
// they can be summarized later.
package logger
