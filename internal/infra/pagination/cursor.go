package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Encode builds an opaque keyset cursor from the last row of a page.
func Encode(at time.Time, id uint) string {
	raw := fmt.Sprintf("%d|%d", at.UTC().UnixNano(), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func Decode(cursor string) (time.Time, uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, 0, ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, ErrInvalidCursor
	}
	nanos, err := parseInt64(parts[0])
	if err != nil {
		return time.Time{}, 0, ErrInvalidCursor
	}
	id, err := parseInt64(parts[1])
	if err != nil || id == 0 {
		return time.Time{}, 0, ErrInvalidCursor
	}
	return time.Unix(0, nanos).UTC(), uint(id), nil
}

// Next returns the cursor for the following page, or "" when the page was short.
func Next(n, limit int, at time.Time, id uint) string {
	if n == 0 || (limit > 0 && n < limit) {
		return ""
	}
	return Encode(at, id)
}

func parseInt64(value string) (int64, error) {
	if value == "" {
		return 0, errors.New("empty")
	}
	var out int64
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if ch < '0' || ch > '9' {
			return 0, errors.New("invalid")
		}
		out = out*10 + int64(ch-'0')
	}
	return out, nil
}
