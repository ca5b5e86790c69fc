package builder

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config tunes the mesh building. DefaultConfig builds an unrefined mesh and,
// like the merge package, lets features of the root site extend out of it.
type Config struct {
	// Refine the material mesh once every feature is inserted
	Refine         bool    `toml:"refine"`
	SizeCriterion  float64 `toml:"size_criterion"`
	ShapeCriterion float64 `toml:"shape_criterion"`
	// Maximum number of points refinement may insert
	MaxSteps int `toml:"max_steps"`
	// Let level curves and material areas of the root site extend over its
	// subsites
	AllowOutside bool `toml:"allow_outside"`

	Logger logrus.FieldLogger `toml:"-"`
}

func DefaultConfig() Config {
	return Config{
		SizeCriterion:  0,
		ShapeCriterion: 2,
		MaxSteps:       10000,
		AllowOutside:   true,
		Logger:         logrus.StandardLogger(),
	}
}

// ReadConfig decodes a TOML configuration over the defaults.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeReader(r, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, "decoding configuration")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("unknown configuration keys %v", undecoded)
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.WithStack(err)
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return Config{}, errors.Wrapf(err, "loading %s", path)
	}
	return cfg, nil
}

func (cfg Config) logger() logrus.FieldLogger {
	if cfg.Logger == nil {
		return logrus.StandardLogger()
	}
	return cfg.Logger
}
