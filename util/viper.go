package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ViperEnvPrefix - Env prefix to be used in viper
const ViperEnvPrefix = "TIDEMARK"

// ViperEnvReplacer - Env replacer to be used in viper
var ViperEnvReplacer = strings.NewReplacer(".", "_", "-", "_")

// EnvName returns the environment variable viper reads key from.
func EnvName(key string) string {
	return strings.ToUpper(ViperEnvPrefix + "_" + ViperEnvReplacer.Replace(key))
}

// BindPFlag - binds flag with viper along with env usage
func BindPFlag(v *viper.Viper, key string, f *pflag.Flag) {
	if f == nil {
		fmt.Fprintf(os.Stderr, "viper failed binding pflag: %v, flag is not defined\n", key)
		return
	}
	if err := v.BindPFlag(key, f); err != nil {
		fmt.Fprintf(os.Stderr, "viper failed binding pflag: %v with error: %v \n", key, err)
	}
	f.Usage = f.Usage + fmt.Sprintf(` (env "%s")`, EnvName(key))
}
