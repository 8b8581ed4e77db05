package objects

import (
	"bytes"
	"encoding/json"

	"github.com/complexairport/dit/internal/diterr"
)

// utf8BOM is the three-byte UTF-8 byte order mark that readers must
// tolerate per spec.md §6 ("readers tolerate a leading BOM").
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// encodeJSON pretty-prints v as UTF-8 JSON, matching spec.md §6's
// "All JSON is UTF-8 pretty-printed" requirement.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeJSON unmarshals data into v, stripping a leading BOM if present.
func decodeJSON(data []byte, v any) error {
	data = bytes.TrimPrefix(data, utf8BOM)
	if err := json.Unmarshal(data, v); err != nil {
		return diterr.Wrap(diterr.KindSerialization, "malformed object file", err)
	}
	return nil
}

// EncodeJSON is encodeJSON exported for the index manager, which shares
// the same "JSON pretty-print" codec as trees and commits (spec.md §6) but
// lives in a separate package.
func EncodeJSON(v any) ([]byte, error) { return encodeJSON(v) }

// DecodeJSON is decodeJSON exported for the same reason as EncodeJSON.
func DecodeJSON(data []byte, v any) error { return decodeJSON(data, v) }
