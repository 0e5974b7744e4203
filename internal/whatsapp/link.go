package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
)

// MessageLink composes a wa.me deep link that opens a chat with the given
// phone number and a pre-filled message. The phone is normalized to digits
// only; an empty phone yields a link without a recipient.
func MessageLink(phone, message string) string {
	normalized := normalizePhone(phone)
	if normalized == "" {
		return fmt.Sprintf("https://wa.me/?text=%s", url.QueryEscape(message))
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", normalized, url.QueryEscape(message))
}

// DocumentMessage builds the standard share message for an issued document
func DocumentMessage(clientName, documentName, fileURL string) string {
	return fmt.Sprintf("Hola %s! Te compartimos tu %s: %s", clientName, documentName, fileURL)
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
