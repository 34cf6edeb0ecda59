package feed

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KBoadi/Ripple-server/cmd/models"
)

// cursor marks a position in the (created_at DESC, id DESC) post ordering.
// The timestamp carries microsecond precision to match what postgres stores;
// the id breaks ties between posts created in the same microsecond.
type cursor struct {
	CreatedAt time.Time
	ID        string
}

func encodeCursor(p *models.Post) string {
	raw := fmt.Sprintf("%d.%s", p.CreatedAt.UnixMicro(), p.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor parses an opaque cursor token. Malformed or unknown tokens
// degrade to nil, meaning first page; a bad cursor never fails the request.
func decodeCursor(token string) *cursor {
	if token == "" {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}

	micros, id, found := strings.Cut(string(raw), ".")
	if !found || id == "" {
		return nil
	}

	ts, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return nil
	}

	return &cursor{
		CreatedAt: time.UnixMicro(ts).UTC(),
		ID:        id,
	}
}
