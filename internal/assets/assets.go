// Package assets holds the static login page served to the external browser.
// The page is inert content from the listener's point of view: it is passed
// through unmodified, and all identity-provider interaction happens inside it.
package assets

import (
	_ "embed"
	"os"
)

//go:embed login.html
var loginPage []byte

// LoginPageTitle is the literal document title of the embedded page, exposed
// for tests that assert the default route serves it.
const LoginPageTitle = "AI Todo - Google Login"

// LoginPage returns the login page markup as raw bytes.
func LoginPage() []byte {
	return loginPage
}

// LoginPageFromFile loads a replacement login page from disk, falling back to
// the embedded copy when path is empty. Used to iterate on the page without
// rebuilding the binary.
func LoginPageFromFile(path string) ([]byte, error) {
	if path == "" {
		return loginPage, nil
	}
	return os.ReadFile(path)
}
