package uid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// New generates a random identifier for reminders and requests.
func New() string {
	return uuid.New().String()
}

// Normalize parses id in any form uuid accepts (braces, urn prefix, upper
// case) and returns the canonical lower-case form that New produces.
func Normalize(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("invalid id %q: %w", id, err)
	}
	return u.String(), nil
}
