package classify

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a marker/keyword override file. Fields omitted from the
// file keep their built-in defaults, so a tuning file only needs to list the
// sets it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrapf(err, "classify: read keywords file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, eris.Wrapf(err, "classify: parse keywords file %s", path)
	}

	zap.L().Info("classify: loaded keyword overrides",
		zap.String("path", path),
		zap.Int("xbrl_markers", len(cfg.XBRLMarkers)),
		zap.Int("inline_markers", len(cfg.InlineMarkers)),
		zap.Int("html_markers", len(cfg.HTMLMarkers)),
		zap.Int("domain_keywords", len(cfg.DomainKeywords)),
	)
	return cfg, nil
}
