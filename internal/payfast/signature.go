package payfast

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ParamString builds the canonical parameter string PayFast signs: every
// field except the signature itself, keys sorted, values URL-encoded with
// spaces as '+', joined as key=value pairs with '&'. A non-empty passphrase
// is appended as a final pair.
func ParamString(n Notification, passphrase string) string {
	keys := make([]string, 0, len(n))
	for key := range n {
		if key == FieldSignature {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, url.QueryEscape(n[key])))
	}

	paramString := strings.Join(pairs, "&")

	if passphrase != "" {
		paramString += fmt.Sprintf("&passphrase=%s", url.QueryEscape(passphrase))
	}

	return paramString
}

// Sign computes the MD5 hex digest of the canonical parameter string.
// MD5 is mandated by the PayFast ITN protocol.
func Sign(n Notification, passphrase string) string {
	sum := md5.Sum([]byte(ParamString(n, passphrase)))
	return hex.EncodeToString(sum[:])
}

// VerifySignature recomputes the digest and compares it to the
// sender-supplied signature field, case-insensitively.
func VerifySignature(n Notification, passphrase string) error {
	received := n.Signature()
	if received == "" {
		return fmt.Errorf("invalid signature: signature field missing")
	}

	calculated := Sign(n, passphrase)
	if !strings.EqualFold(calculated, received) {
		return fmt.Errorf("invalid signature")
	}

	return nil
}
