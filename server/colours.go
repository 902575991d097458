package server

import (
	"fmt"
	"log"
	"net/http"
)

// ANSI colours for the development console.
const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m"

	ResetColor = "\033[0m"
)

var methodColors = map[string]string{
	http.MethodGet:     Green,
	http.MethodPost:    Blue,
	http.MethodPut:     Cyan,
	http.MethodDelete:  Yellow,
	http.MethodPatch:   Magenta,
	http.MethodOptions: Gray,
}

func colourMethod(method string) string {
	colour, ok := methodColors[method]
	if !ok {
		colour = Gray
	}
	return colour + fmt.Sprintf(" %-7s", method) + ResetColor
}

// colourStatus paints 2xx green, 3xx cyan, 4xx yellow and 5xx red.
func colourStatus(status int) string {
	colour := Green
	switch {
	case status >= 500:
		colour = Red
	case status >= 400:
		colour = Yellow
	case status >= 300:
		colour = Cyan
	}
	return fmt.Sprintf("%s%d%s", colour, status, ResetColor)
}

// logRoute prints a registered route at startup.
func logRoute(method, path string) {
	log.Printf("[%-19s] %s\n", colourMethod(method), path)
}

// logRequest prints a served request in development.
func logRequest(method, path string, status int) {
	log.Printf("[%-19s] %s %s\n", colourMethod(method), path, colourStatus(status))
}

func logError(method, path, error string) {
	log.Printf("[%-19s] %s %s\n", colourMethod(method), path, Red+error+ResetColor)
}
