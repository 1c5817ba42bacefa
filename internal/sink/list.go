package sink

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ListSeparator joins list-valued cells.
const ListSeparator = ", "

const (
	EncodingJoined = "joined"
	EncodingJSON   = "json"
)

var listEscaper = strings.NewReplacer(`\`, `\\`, `,`, `\,`)

// JoinList renders values as one cell separated by ListSeparator. Backslashes
// and commas inside a value are escaped so SplitList can undo it.
func JoinList(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = listEscaper.Replace(v)
	}
	return strings.Join(escaped, ListSeparator)
}

// SplitList is the inverse of JoinList.
func SplitList(cell string) []string {
	if cell == "" {
		return nil
	}
	var (
		values  []string
		current strings.Builder
	)
	for i := 0; i < len(cell); i++ {
		switch c := cell[i]; {
		case c == '\\' && i+1 < len(cell):
			i++
			current.WriteByte(cell[i])
		case c == ',':
			values = append(values, current.String())
			current.Reset()
			if strings.HasPrefix(cell[i+1:], " ") {
				i++
			}
		default:
			current.WriteByte(c)
		}
	}
	return append(values, current.String())
}

// EncodeList renders values with the named encoding.
func EncodeList(encoding string, values []string) (string, error) {
	switch encoding {
	case EncodingJoined, "":
		return JoinList(values), nil
	case EncodingJSON:
		if values == nil {
			values = []string{}
		}
		data, err := json.Marshal(values)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
}

// DecodeList is the inverse of EncodeList.
func DecodeList(encoding, cell string) ([]string, error) {
	switch encoding {
	case EncodingJoined, "":
		return SplitList(cell), nil
	case EncodingJSON:
		var values []string
		if err := json.Unmarshal([]byte(cell), &values); err != nil {
			return nil, err
		}
		return values, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encoding)
	}
}
