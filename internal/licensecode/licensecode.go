// Package licensecode generates and validates license codes of the form
// XXXX-XXXX-XXXX over [A-Z0-9].
package licensecode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	Groups    = 3
	GroupLen  = 4
	Separator = "-"
	// CharsetSpec is expanded by ParseCharset.
	CharsetSpec = "A-Z,0-9"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// ParseCharset expands comma separated parts, where a part of the form "a-z"
// is an inclusive byte range and anything else is taken literally.
func ParseCharset(input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("empty charset")
	}
	var builder strings.Builder
	parts := strings.Split(input, ",")
	for _, part := range parts {
		if len(part) == 3 && part[1] == '-' {
			start := part[0]
			end := part[2]
			if start > end {
				return "", fmt.Errorf("invalid range: %s", part)
			}
			for i := start; i <= end; i++ {
				builder.WriteByte(i)
			}
		} else {
			builder.WriteString(part)
		}
	}
	return builder.String(), nil
}

var defaultCharset = func() string {
	cs, err := ParseCharset(CharsetSpec)
	if err != nil {
		panic(err)
	}
	return cs
}()

// Generate returns a random code in the canonical format.
func Generate() (string, error) {
	return GenerateWith(defaultCharset, Groups, GroupLen, Separator)
}

// GenerateWith builds groups of random characters from charset joined by
// separator.
func GenerateWith(charset string, groups, groupLen int, separator string) (string, error) {
	if charset == "" {
		return "", fmt.Errorf("empty charset")
	}
	if groups <= 0 || groupLen <= 0 {
		return "", fmt.Errorf("invalid code shape %dx%d", groups, groupLen)
	}

	n := big.NewInt(int64(len(charset)))
	parts := make([]string, groups)
	for g := range parts {
		b := make([]byte, groupLen)
		for i := range b {
			num, err := rand.Int(rand.Reader, n)
			if err != nil {
				return "", err
			}
			b[i] = charset[num.Int64()]
		}
		parts[g] = string(b)
	}
	return strings.Join(parts, separator), nil
}

// Valid reports whether code is in the canonical format.
func Valid(code string) bool {
	return codePattern.MatchString(code)
}
