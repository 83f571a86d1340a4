package id

import (
	"crypto/md5"
	"io"

	"github.com/gofrs/uuid"
)

// UUIDFromString deterministic version 3 style uuid of text
func UUIDFromString(text string) string {
	h := md5.New()
	_, _ = io.WriteString(h, text)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}

// UUIDByName name based uuid in the namespace ns, ns must be a uuid
func UUIDByName(ns, name string) (string, error) {
	namespace, err := uuid.FromString(ns)
	if err != nil {
		return "", err
	}

	return uuid.NewV5(namespace, name).String(), nil
}
