// Package document parses raw ingestion input into a JSON value tree.
package document

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"

	"github.com/matsen/relgraph/internal/logger"
)

// ErrParse is returned when input is not valid JSON.
var ErrParse = errors.New("input is not valid JSON")

// Options controls parsing.
type Options struct {
	// Repair attempts to fix malformed JSON (unquoted keys, trailing commas,
	// truncated documents) before giving up.
	Repair bool
}

// Parse validates raw and returns it as a JSON value. The returned value keeps
// the document's own key order.
func Parse(raw []byte, opts Options) (gjson.Result, error) {
	raw = bytes.TrimSpace(raw)
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if len(raw) == 0 {
		return gjson.Result{}, fmt.Errorf("%w: empty input", ErrParse)
	}

	if gjson.ValidBytes(raw) {
		return gjson.ParseBytes(raw), nil
	}

	if !opts.Repair {
		return gjson.Result{}, ErrParse
	}

	repaired, err := jsonrepair.JSONRepair(string(raw))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: repair failed: %v", ErrParse, err)
	}
	if !gjson.Valid(repaired) {
		return gjson.Result{}, fmt.Errorf("%w: repaired output still invalid", ErrParse)
	}

	logger.Warn("Input was malformed JSON and has been repaired")
	return gjson.Parse(repaired), nil
}
