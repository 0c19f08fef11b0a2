package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlagsWithEnvVars parses the command line arguments.
// Every flag can also be set using an environment variable named after the
// flag, upper-cased and prefixed with envVarPrefix.
// Unknown environment variables with that prefix are rejected.
func ParseFlagsWithEnvVars(flags *flag.FlagSet, envVarPrefix string, args []string) error {
	addLogFlags(flags)

	supportedEnvVars := map[string]struct{}{}

	var err error

	flags.VisitAll(func(f *flag.Flag) {
		envVarName := EnvVarName(envVarPrefix, f.Name)
		f.Usage = fmt.Sprintf("%s (%s)", f.Usage, envVarName)
		supportedEnvVars[envVarName] = struct{}{}

		if envVarValue := os.Getenv(envVarName); envVarValue != "" && err == nil {
			f.DefValue = envVarValue
			if e := f.Value.Set(envVarValue); e != nil {
				err = fmt.Errorf("invalid environment variable %s value provided: %w", envVarName, e)
			}
		}
	})
	if err != nil {
		return err
	}

	err = flags.Parse(args)
	if err != nil {
		return err
	}

	for _, entry := range os.Environ() {
		if strings.HasPrefix(entry, envVarPrefix) {
			kv := strings.SplitN(entry, "=", 2)
			if _, ok := supportedEnvVars[kv[0]]; !ok {
				return fmt.Errorf("unsupported environment variable provided: %s", kv[0])
			}
		}
	}

	return nil
}

func EnvVarName(prefix, flagName string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
