package utils

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func Now() time.Time {
	return time.Now().UTC()
}

func NowPtr() *time.Time {
	now := Now()
	return &now
}

// GenerateNanoIDWithPrefix produces ids like "scan_f3k9x2..." used as primary
// keys across the models.
func GenerateNanoIDWithPrefix(prefix string, length int) string {
	id, err := gonanoid.Generate(nanoidAlphabet, length)
	if err != nil {
		panic(err)
	}
	return prefix + "_" + id
}
