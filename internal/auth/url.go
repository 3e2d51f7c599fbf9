package auth

import (
	"fmt"
	"net/url"

	"github.com/aitodo/authbridge/internal/config"
)

// LoginURL builds the URL the external browser is pointed at. The login page
// reads the identity-provider configuration back out of the query string, so
// one static page works for whatever port and deployment is in play.
func LoginURL(port int, fb *config.FirebaseConfig) string {
	q := url.Values{}
	q.Set("apiKey", fb.APIKey)
	q.Set("authDomain", fb.AuthDomain)
	q.Set("projectId", fb.ProjectID)
	if fb.SignInMode != "" && fb.SignInMode != config.SignInModePopup {
		q.Set("mode", fb.SignInMode)
	}
	return fmt.Sprintf("http://127.0.0.1:%d/login?%s", port, q.Encode())
}
