package users

import (
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/client"
)

// decodeJSON unmarshals a response body into dest. A declared content type
// must be JSON; an absent one is tolerated.
func decodeJSON(resp *client.Response, dest any) error {
	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return fmt.Errorf("%w: content type %q: %v", errDecode, contentType, err)
		}
		if mediaType != "application/json" && !strings.HasSuffix(mediaType, "+json") {
			return fmt.Errorf("%w: unsupported content type %q", errDecode, mediaType)
		}
	}

	if err := json.Unmarshal(resp.Body, dest); err != nil {
		return fmt.Errorf("%w: %v", errDecode, err)
	}
	return nil
}
