package reward

import (
	"strings"

	"github.com/google/uuid"
)

// NewBadgeID returns a short public badge id such as badge-1a2b3c4d.
func NewBadgeID() string { return "badge-" + shortID() }

// NewCertificateID returns a short public certificate id such as cert-1a2b3c4d.
func NewCertificateID() string { return "cert-" + shortID() }

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
