//go:build dev
// +build dev

package logger

import "fmt"

func HandleError(err error) {
	fmt.Printf("Dev Mode - Error: %v\n", err)
}

func HandleLog(message string) {
	fmt.Printf("Dev Mode - %s\n", message)
}

func HandleDebug(format string, args ...interface{}) {
	fmt.Printf("Dev Mode - Debug: "+format+"\n", args...)
}
