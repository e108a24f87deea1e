package kakao

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// responseSchema covers only what the renderer depends on.
const responseSchema = `{
  "type": "object",
  "required": ["documents"],
  "properties": {
    "meta": {
      "type": "object",
      "properties": {
        "total_count":    {"type": "integer"},
        "pageable_count": {"type": "integer"},
        "is_end":         {"type": "boolean"}
      }
    },
    "documents": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title":     {"type": "string"},
          "contents":  {"type": "string"},
          "url":       {"type": "string"},
          "blogname":  {"type": "string"},
          "thumbnail": {"type": "string"},
          "datetime":  {"type": "string"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(responseSchema)

func validateResponse(body []byte) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.Wrap(err, "decode response")
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.Errorf("unexpected response shape: %s", strings.Join(msgs, "; "))
}
