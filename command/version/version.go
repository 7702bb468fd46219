package version

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"tracebridge/config"
)

var versionNumber = "0.1.0-dev"

func VersionNumber() string {
	return versionNumber
}

func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

type VersionCommand struct{}

func (c *VersionCommand) Synopsis() string {
	return "Prints the version of tracebridge"
}

func (c *VersionCommand) Flags() *pflag.FlagSet {
	return pflag.NewFlagSet("version", pflag.ContinueOnError)
}

func (c *VersionCommand) Execute(ctx context.Context, cfg *config.Config, args []string) error {
	fmt.Println(versionNumber)
	return nil
}
