// Package config reads brainmesh settings from a config file, the environment
// and defaults.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/go-playground/validator.v9"

	"github.com/soypat/atlasmesh/log"
	"github.com/soypat/atlasmesh/treeimport"
)

// EnvPrefix prefixes environment overrides, as in BRAINMESH_LOG_LEVEL.
const EnvPrefix = "BRAINMESH"

var validate = validator.New()

// Config is the full configuration.
type Config struct {
	Log      Log      `mapstructure:"log"`
	Ontology Ontology `mapstructure:"ontology"`
	Export   Export   `mapstructure:"export"`
	Import   Import   `mapstructure:"import"`
}

// Log configures the logger.
type Log struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warning error critical"`
}

// Ontology configures where the structure ontology comes from.
type Ontology struct {
	BaseURL string `mapstructure:"base_url" validate:"url"`
	GraphID int    `mapstructure:"graph_id" validate:"min=1"`
	// Cache is a JSON file of cleaned structures. It is read when present and
	// written after a download.
	Cache string `mapstructure:"cache"`
}

// Export configures surface extraction.
type Export struct {
	Annotation string `mapstructure:"annotation"`
	// Resolution is the voxel size in microns used when the annotation header
	// carries none.
	Resolution float64 `mapstructure:"resolution" validate:"gt=0"`
	Root       string  `mapstructure:"root" validate:"required"`
	Format     string  `mapstructure:"format" validate:"oneof=obj stl"`
	// Cut keeps [0, CutSize) along CutAxis. A CutSize of zero keeps half.
	Cut     bool `mapstructure:"cut"`
	CutAxis int  `mapstructure:"cut_axis" validate:"min=0,max=2"`
	CutSize int  `mapstructure:"cut_size" validate:"min=0"`
	// Scale multiplies vertex coordinates. Zero leaves them in voxel units.
	Scale   float64 `mapstructure:"scale" validate:"min=0"`
	Normals bool    `mapstructure:"normals"`
	// Plot and Archive are optional output paths.
	Plot    string `mapstructure:"plot"`
	PlotTop int    `mapstructure:"plot_top" validate:"min=1"`
	Archive string `mapstructure:"archive"`
}

// Import configures tree import.
type Import struct {
	Remesh         bool    `mapstructure:"remesh"`
	FinalizeRemesh bool    `mapstructure:"finalize_remesh"`
	SmoothShade    bool    `mapstructure:"smooth_shade"`
	ImportParents  bool    `mapstructure:"import_parents"`
	OctreeDepth    int     `mapstructure:"octree_depth" validate:"min=1,max=12"`
	PixelScale     float64 `mapstructure:"pixel_scale" validate:"gt=0"`
	TreeDepth      int     `mapstructure:"tree_depth" validate:"min=-1"`
	Mirror         bool    `mapstructure:"mirror"`
}

// Options converts the import section to importer options. The mirror origin
// follows the pixel scale.
func (i Import) Options() treeimport.Options {
	return treeimport.Options{
		Remesh:         i.Remesh,
		FinalizeRemesh: i.FinalizeRemesh,
		SmoothShade:    i.SmoothShade,
		ImportParents:  i.ImportParents,
		OctreeDepth:    i.OctreeDepth,
		PixelScale:     i.PixelScale,
		TreeDepth:      i.TreeDepth,
		Mirror:         i.Mirror,
		Origin:         treeimport.DefaultOrigin(i.PixelScale),
	}
}

func setDefaults(v *viper.Viper) {
	imp := treeimport.DefaultOptions()
	keys := map[string]interface{}{
		"log.level": "info",

		"ontology.base_url": "http://api.brain-map.org/api/v2/data/query.json",
		"ontology.graph_id": 1,
		"ontology.cache":    "structures.json",

		"export.annotation": "annotation_25.nrrd",
		"export.resolution": 25.0,
		"export.root":       "meshes",
		"export.format":     "obj",
		"export.cut":        true,
		"export.cut_axis":   1,
		"export.cut_size":   0,
		"export.scale":      0.0,
		"export.normals":    false,
		"export.plot":       "",
		"export.plot_top":   20,
		"export.archive":    "",

		"import.remesh":          imp.Remesh,
		"import.finalize_remesh": imp.FinalizeRemesh,
		"import.smooth_shade":    imp.SmoothShade,
		"import.import_parents":  imp.ImportParents,
		"import.octree_depth":    imp.OctreeDepth,
		"import.pixel_scale":     imp.PixelScale,
		"import.tree_depth":      imp.TreeDepth,
		"import.mirror":          imp.Mirror,
	}
	for k, value := range keys {
		v.SetDefault(k, value)
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the default configuration with environment overrides.
func Default() (*Config, error) {
	return unmarshal(newViper())
}

// Read reads the config file name (without extension) from paths, by default
// "." and "configs". A missing file is not an error.
func Read(name string, paths ...string) (*Config, error) {
	v := newViper()
	v.SetConfigName(name)
	if len(paths) == 0 {
		paths = []string{".", "configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config")
		}
		log.Debugf("config %q not found, using defaults", name)
	} else {
		log.Debugf("using config file %s", v.ConfigFileUsed())
	}
	return unmarshal(v)
}

// ReadFile reads the config file at path.
func ReadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		log.Debugf("Unmarshaling Config failed: %v", err)
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every field range.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	switch er := err.(type) {
	case nil:
		return nil
	case *validator.InvalidValidationError:
		return errors.Wrap(er, "validating config")
	case validator.ValidationErrors:
		fe := er[0]
		return errors.Errorf("invalid config field %s: failed %q check with value %v", fe.Namespace(), fe.Tag(), fe.Value())
	default:
		return err
	}
}
