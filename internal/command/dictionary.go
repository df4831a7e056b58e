package command

import (
	"maps"
	"slices"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/dictdata"
	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

// BuildDictionary 用数据文件（可为空）与 KEY=VALUE 覆盖项构建根字典。
func BuildDictionary(reg *ctemplate.Registry, name, dataPath string, overrides map[string]string) (*ctemplate.Dictionary, error) {
	var (
		d   *ctemplate.Dictionary
		err error
	)
	if dataPath != "" {
		if d, err = dictdata.LoadFile(reg, name, dataPath); err != nil {
			return nil, err
		}
	} else {
		d = reg.NewDictionary(name)
	}

	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		d.SetValue(key, overrides[key])
	}

	return d, nil
}
