package schema

import "github.com/grovetools/searchcore/logging"

// Extensions maps the top-level extension keys of searchcore.yml to the Go
// type their section decodes into. Each is reflected into the composed
// schema; any other top-level key is rejected.
var Extensions = map[string]interface{}{
	"logging": logging.Config{},
}
