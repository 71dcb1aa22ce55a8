package common

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the YAML document at path into a Tree.
//
// An empty or null document fails with ErrEmptyConfig and a malformed one, or
// one whose top level is not a mapping, with ErrParse. Filesystem errors are
// returned wrapped and still match fs.ErrNotExist or fs.ErrPermission.
func (t *Toolkit) LoadConfig(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config %s", path)
	}

	var doc any

	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, newError("load config", path, ErrParse, err)
	}

	if doc == nil {
		return nil, newError("load config", path, ErrEmptyConfig, nil)
	}

	values, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, newError("load config", path, ErrParse, errors.Errorf("top level is %T, not a mapping", doc))
	}

	t.logger.Info("yaml file loaded", "path", path)

	return newTree(values), nil
}
