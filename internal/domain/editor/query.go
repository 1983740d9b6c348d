package editor

import (
	"io"
	"log/slog"
	"net/url"

	"github.com/pawdiary/pawdiary/internal/domain/template"
)

// Query is the navigation state carried in an editor URL.
type Query struct {
	TemplateID string `json:"templateId,omitempty"`
	Shell      Shell  `json:"shell"`
}

var queryModes = map[string]Shell{
	"quick":    ShellQuick,
	"guided":   ShellGuided,
	"advanced": ShellAdvanced,
}

// ParseQuery reads the template and mode parameters. Unknown parameters,
// unknown template ids and unknown modes are logged and dropped, never returned
// as errors. The shell defaults to page.
func ParseQuery(q url.Values, templates *template.Registry, logger *slog.Logger) Query {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	out := Query{Shell: ShellPage}

	for key, vals := range q {
		if len(vals) == 0 {
			continue
		}
		val := vals[0]
		switch key {
		case "template":
			if _, ok := templates.Get(val); !ok {
				logger.Warn("ignoring unknown template in query", "template", val)
				continue
			}
			out.TemplateID = val
		case "mode":
			shell, ok := queryModes[val]
			if !ok {
				logger.Warn("ignoring unknown editor mode in query", "mode", val)
				continue
			}
			out.Shell = shell
		default:
			logger.Warn("ignoring unknown query parameter", "param", key)
		}
	}
	return out
}
