package common

import (
	"github.com/atotto/clipboard"
)

// SetClipboardValue copies the given text to the system clipboard.
func SetClipboardValue(value string) error {
	return clipboard.WriteAll(value)
}
