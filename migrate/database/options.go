package database

import (
	"fmt"

	"github.com/Masterminds/semver"
	"github.com/mitchellh/mapstructure"

	"github.com/tidemark/cli/pkg/errors"
)

const (
	OptionConnection     = "connection"
	OptionMigrationTable = "migration_table"
	OptionVersionOrder   = "version_order"
	// OptionDefaultMigrationTable is the deprecated spelling of
	// OptionMigrationTable.
	OptionDefaultMigrationTable = "default_migration_table"
)

const (
	DefaultMigrationTable = "phinxlog"

	VersionOrderCreationTime  = "creation_time"
	VersionOrderExecutionTime = "execution_time"
)

var deprecatedMigrationTableSince = semver.MustParse("0.13.0")

// Notice describes a deprecated option found while normalising options.
type Notice struct {
	Option       string
	DeprecatedIn *semver.Version
	Replacement  string
}

func (n Notice) String() string {
	return fmt.Sprintf("the %q option is deprecated since %s, use %q instead", n.Option, n.DeprecatedIn, n.Replacement)
}

// NormalizeOptions returns a canonical copy of raw, with deprecated keys
// translated to their replacements, and the notices raised doing so. raw is
// never modified.
func NormalizeOptions(raw map[string]interface{}) (map[string]interface{}, []Notice) {
	canonical := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		canonical[k] = v
	}

	var notices []Notice
	if v, ok := canonical[OptionDefaultMigrationTable]; ok {
		notices = append(notices, Notice{
			Option:       OptionDefaultMigrationTable,
			DeprecatedIn: deprecatedMigrationTableSince,
			Replacement:  OptionMigrationTable,
		})
		if _, set := canonical[OptionMigrationTable]; !set {
			canonical[OptionMigrationTable] = v
		}
		delete(canonical, OptionDefaultMigrationTable)
	}
	return canonical, notices
}

// Settings is the typed view of the options the adapter interprets itself.
type Settings struct {
	MigrationTable string `mapstructure:"migration_table"`
	VersionOrder   string `mapstructure:"version_order"`
}

// DecodeSettings decodes the typed settings out of an option map. Values are
// weakly typed so that anything viper hands over decodes as well.
func DecodeSettings(opts map[string]interface{}) (Settings, error) {
	var op errors.Op = "database.DecodeSettings"
	var s Settings
	canonical, _ := NormalizeOptions(opts)
	delete(canonical, OptionConnection)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return s, errors.E(op, errors.KindInternal, err)
	}
	if err := decoder.Decode(canonical); err != nil {
		return s, errors.E(op, errors.KindConfiguration, err)
	}
	return s, nil
}
